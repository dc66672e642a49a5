package api

import (
	"errors"
	"net/http"
	"time"

	"gostudio/cache"
)

// setupRoutes initializes all API routes
func (s *Server) setupRoutes() {
	s.router.Use(s.CORSMiddleware)
	s.router.Use(s.RequestIDMiddleware)

	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/status", s.handleStatus).Methods("GET")
	apiRouter.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// StatusResponse carries the latest game snapshot plus the formatted
// three-line summary.
type StatusResponse struct {
	Status    cache.GameStatus `json:"status"`
	Summary   string           `json:"summary"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.state.Query()
	if err != nil {
		if errors.Is(err, cache.ErrNoData) {
			SendErrorResponse(w, http.StatusNotFound, "no data yet", err)
			return
		}
		SendErrorResponse(w, http.StatusInternalServerError, "failed to query status", err)
		return
	}

	SendJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data: StatusResponse{
			Status:    status,
			Summary:   status.Summary(),
			UpdatedAt: s.state.UpdatedAt(),
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	SendJSONResponse(w, http.StatusOK, Response{
		Success: true,
		Data: map[string]interface{}{
			"stream_state": s.controller.State().String(),
			"uptime":       time.Since(s.started).String(),
		},
	})
}
