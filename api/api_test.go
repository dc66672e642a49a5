package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gostudio/cache"
	"gostudio/stream"
)

func newTestServer() (*Server, *cache.GameState) {
	state := cache.NewGameState()
	controller := stream.NewController(stream.Options{})
	return NewServer("0", state, controller), state
}

func doRequest(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestStatusBeforeFirstEvent(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer()
	rec := doRequest(s, http.MethodGet, "/api/status")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 before the first game event", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if resp.Success {
		t.Fatal("Success = true, want false")
	}
	if resp.Message != "no data yet" {
		t.Fatalf("Message = %q, want %q", resp.Message, "no data yet")
	}
}

func TestStatusAfterGameEvent(t *testing.T) {
	t.Parallel()

	s, state := newTestServer()
	state.Record(cache.GameStatus{NickName: "A", Level: 5, Text: "online"})

	rec := doRequest(s, http.MethodGet, "/api/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Success bool           `json:"success"`
		Data    StatusResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !resp.Success {
		t.Fatal("Success = false, want true")
	}
	if resp.Data.Status.NickName != "A" || resp.Data.Status.Level != 5 {
		t.Fatalf("Data.Status = %+v", resp.Data.Status)
	}

	lines := strings.Split(resp.Data.Summary, "\n")
	if len(lines) != 3 {
		t.Fatalf("summary has %d lines, want 3: %q", len(lines), resp.Data.Summary)
	}
}

func TestHealthReportsStreamState(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer()
	rec := doRequest(s, http.MethodGet, "/api/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if got := resp.Data["stream_state"]; got != "idle" {
		t.Fatalf("stream_state = %v, want idle for a controller that never ran", got)
	}
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	s, _ := newTestServer()

	rec := doRequest(s, http.MethodGet, "/api/health")
	if rec.Header().Get("X-Request-ID") == "" {
		t.Fatal("X-Request-ID header missing")
	}

	// A caller-supplied request ID is echoed back
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "caller-id")
	s.router.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-id" {
		t.Fatalf("X-Request-ID = %q, want the caller's ID echoed", got)
	}
}
