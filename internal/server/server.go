// Package server exposes the prediction pipeline over HTTP so the trading
// engine can call it without shelling out to the predict CLI. The JSON
// contract on the wire is identical to the CLI's stdout contract.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/helix-lab/signal-ml/internal/logger"
	"github.com/helix-lab/signal-ml/internal/predictor"
	"github.com/helix-lab/signal-ml/internal/types"
)

// predictRequest is the body of POST /api/v1/predict.
type predictRequest struct {
	Bars []types.Bar `json:"bars"`
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Server is the HTTP predict surface.
type Server struct {
	predictor  *predictor.Predictor
	bundlePath string
	log        *logger.Logger
	httpServer *http.Server
}

// NewServer creates a Server bound to the given listen address.
func NewServer(listen string, p *predictor.Predictor, bundlePath string, log *logger.Logger) *Server {
	server := &Server{
		predictor:  p,
		bundlePath: bundlePath,
		log:        log,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/predict", server.handlePredict).Methods(http.MethodPost)
	router.HandleFunc("/healthz", server.handleHealth).Methods(http.MethodGet)

	server.httpServer = &http.Server{
		Addr:              listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return server
}

// ListenAndServe blocks serving requests until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler returns the HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var request predictRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		// malformed input maps to the same neutral contract as every other
		// prediction failure, but with a client-error status
		s.writeJSON(w, http.StatusBadRequest, types.NeutralPrediction("invalid request body: "+err.Error()))

		return
	}

	if len(request.Bars) == 0 {
		s.writeJSON(w, http.StatusBadRequest, types.NeutralPrediction("no bars data provided"))

		return
	}

	result := s.predictor.Predict(request.Bars)
	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_, err := os.Stat(s.bundlePath)

	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		ModelLoaded: err == nil,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.Error("Failed to encode response", zap.Error(err))
	}
}
