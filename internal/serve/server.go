// Package serve exposes a trained network over HTTP.
//
// Routes:
//
//	GET  /model    checkpoint metadata and topology
//	POST /predict  {"input": [...]} -> {"output": [...], "class": n}
//	GET  /healthz
package serve

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/dense/internal/checkpoint"
	"github.com/born-ml/dense/internal/nn"
)

// PredictRequest is the body of POST /predict.
type PredictRequest struct {
	Input []float64 `json:"input" binding:"required"`
}

// PredictResponse is the answer of POST /predict. Class is the arg-max of
// Output for multi-output networks and the rounded output otherwise.
type PredictResponse struct {
	Output []float64 `json:"output"`
	Class  int       `json:"class"`
}

// ModelInfo describes the served network.
type ModelInfo struct {
	ID          string   `json:"id"`
	Loss        string   `json:"loss_kind"`
	InputSize   int      `json:"input_size"`
	Activations []string `json:"activations"`
	Neurons     []int    `json:"neurons"`
}

// Server answers prediction requests for one network. The network is
// only read, so requests are served concurrently.
type Server struct {
	net  *nn.Network
	info ModelInfo
}

// New wraps a checkpoint's network. net must be restored from cp.
func New(cp *checkpoint.Checkpoint, net *nn.Network) *Server {
	return &Server{
		net: net,
		info: ModelInfo{
			ID:          cp.ID.String(),
			Loss:        cp.LossKind,
			InputSize:   cp.InputSize,
			Activations: cp.Activations,
			Neurons:     cp.Neurons,
		},
	}
}

// Router builds the gin engine serving s.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/model", s.modelHandler())
	router.POST("/predict", s.predictHandler())
	return router
}

func (s *Server) modelHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, s.info)
	}
}

func (s *Server) predictHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PredictRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if len(req.Input) != s.info.InputSize {
			c.JSON(http.StatusBadRequest, gin.H{"error": "input size mismatch", "want": s.info.InputSize})
			return
		}

		out, err := s.net.Predict(req.Input)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, PredictResponse{Output: out, Class: classOf(out)})
	}
}

func classOf(out []float64) int {
	if len(out) == 1 {
		if out[0] >= 0.5 {
			return 1
		}
		return 0
	}
	return floats.MaxIdx(out)
}
