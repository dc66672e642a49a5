package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gostudio/cache"
	"gostudio/logger"
	"gostudio/stream"

	"github.com/gorilla/mux"
)

// Server exposes the status query surface over HTTP.
type Server struct {
	router     *mux.Router
	server     *http.Server
	port       string
	state      *cache.GameState
	controller *stream.Controller
	started    time.Time
	log        *logger.Logger
}

// Response is a standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func NewServer(port string, state *cache.GameState, controller *stream.Controller) *Server {
	s := &Server{
		router:     mux.NewRouter(),
		port:       port,
		state:      state,
		controller: controller,
		log:        logger.L(),
	}
	s.setupRoutes()
	return s
}

// Start runs the HTTP server in the background until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.started = time.Now()
	s.server = &http.Server{
		Addr:         ":" + s.port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.log.Info("Starting API server", map[string]interface{}{
			"port": s.port,
		})

		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("API server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	s.log.Info("Shutting down API server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
	}

	return nil
}

// SendJSONResponse writes a JSON response with the given status code
func SendJSONResponse(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// SendErrorResponse writes a standard error envelope
func SendErrorResponse(w http.ResponseWriter, status int, message string, err error) {
	resp := Response{
		Success: false,
		Message: message,
	}
	if err != nil {
		resp.Error = err.Error()
	}
	SendJSONResponse(w, status, resp)
}
