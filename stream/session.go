package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"gostudio/auth"
	"gostudio/logger"
	"gostudio/sse"
)

// session owns one streaming connection. It feeds every chunk, in
// arrival order, into a fresh decoder and routes decoded events to the
// handler. A session never outlives its connection.
type session struct {
	client  *http.Client
	baseURL string
	token   string
	handle  func(ctx context.Context, event sse.Event)
	log     *logger.Logger
}

// run connects and pumps the stream until it ends. onConnect fires
// once the HTTP connect succeeds. Returns nil when the context was
// cancelled (caller-initiated, not a failure) and a classified *Error
// otherwise.
func (s *session) run(ctx context.Context, onConnect func()) error {
	streamURL := fmt.Sprintf("%s/sse/games?token=%s", s.baseURL, url.QueryEscape(s.token))

	s.log.Debug("Opening game stream", map[string]interface{}{
		"base_url": s.baseURL,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return &Error{Kind: FailureTransient, Err: fmt.Errorf("failed to build stream request: %w", err)}
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("User-Agent", auth.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &Error{Kind: FailureTransient, Err: fmt.Errorf("stream connect failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &Error{Kind: FailureAuth, Err: &auth.AuthError{StatusCode: resp.StatusCode}}
	}
	if resp.StatusCode != http.StatusOK {
		return &Error{Kind: FailureTransient, Err: fmt.Errorf("stream returned status %d", resp.StatusCode)}
	}

	onConnect()

	decoder := sse.NewDecoder()
	buf := make([]byte, 4096)
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			for _, event := range decoder.Feed(buf[:n]) {
				s.handle(ctx, event)
			}
		}
		if err != nil {
			decoder.Flush()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				// The service has no clean end-of-stream distinct from
				// EOF, so any EOF we did not cause is retried
				return &Error{Kind: FailureTransient, Err: fmt.Errorf("stream ended: %w", err)}
			}
			return &Error{Kind: FailureTransient, Err: fmt.Errorf("stream read failed: %w", err)}
		}
	}
}
