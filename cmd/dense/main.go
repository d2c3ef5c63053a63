// Package main provides the dense training engine CLI.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

const version = "v0.1.0-dev"

type command struct {
	name    string
	summary string
	run     func(args []string, stdout io.Writer, logger *slog.Logger) error
}

var commands = []command{
	{"version", "Show version", func(_ []string, stdout io.Writer, _ *slog.Logger) error {
		_, err := fmt.Fprintf(stdout, "dense %s\n", version)
		return err
	}},
	{"xor", "Train the XOR network with a chosen optimizer", runXOR},
	{"train", "Train a network on a CSV or IDX dataset", runTrain},
	{"gradcheck", "Compare analytic and numeric gradients on a random network", runGradCheck},
	{"serve", "Serve predictions of a checkpoint over HTTP", runServe},
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if len(os.Args) < 2 {
		usage(os.Stdout)
		return
	}
	for _, cmd := range commands {
		if cmd.name == os.Args[1] {
			if err := cmd.run(os.Args[2:], os.Stdout, logger); err != nil {
				logger.Error(cmd.name+" failed", "error", err)
				os.Exit(1)
			}
			return
		}
	}
	usage(os.Stderr)
	os.Exit(2)
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "dense - feedforward network training engine\n")
	fmt.Fprintf(w, "Version: %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", cmd.name, cmd.summary)
	}
}
