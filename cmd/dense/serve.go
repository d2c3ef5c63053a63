package main

import (
	"flag"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/born-ml/dense/internal/checkpoint"
	"github.com/born-ml/dense/internal/nn"
	"github.com/born-ml/dense/internal/optim"
	"github.com/born-ml/dense/internal/serve"
)

func runServe(args []string, _ io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	path := fs.String("checkpoint", "", "checkpoint file to serve")
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cp, err := checkpoint.LoadFile(*path)
	if err != nil {
		return err
	}
	net, _, err := cp.Restore(nn.Config{}, optim.Options{})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	logger.Info("serving", "addr", *addr, "model", cp.ID)
	return serve.New(cp, net).Router().Run(*addr)
}
