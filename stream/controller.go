package stream

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"sync/atomic"
	"time"

	"gostudio/auth"
	"gostudio/cache"
	"gostudio/logger"
	"gostudio/notify"
	"gostudio/sse"
	"gostudio/token"
)

// State names the controller's position in the reconnect machine.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateStreaming
	StateBackingOff
	StateRefreshingToken
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateBackingOff:
		return "backing_off"
	case StateRefreshingToken:
		return "refreshing_token"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Backoff policy constants. Fixed policy, not configuration.
const (
	backoffBase     = time.Second
	backoffCap      = 30 * time.Second
	backoffMaxShift = 5
	backoffJitter   = 500 * time.Millisecond
)

// Options wires the controller's collaborators.
type Options struct {
	BaseURL  string
	Email    string
	Password string

	Auth     *auth.Client
	Tokens   token.Store
	State    *cache.GameState
	Notifier *notify.Dispatcher

	// HTTPClient carries the long-lived stream connection. Must not
	// have a request timeout. Defaults to a fresh client.
	HTTPClient *http.Client

	// After and Jitter exist so tests can drive the backoff clock.
	After  func(d time.Duration) <-chan time.Time
	Jitter func() time.Duration
}

// Controller drives repeated stream sessions: connect, stream, and on
// failure either refresh the token (auth failures) or back off
// (everything else). It runs until its context is cancelled and never
// gives up on its own.
type Controller struct {
	opts    Options
	token   string
	attempt int
	state   atomic.Int32
	after   func(d time.Duration) <-chan time.Time
	jitter  func() time.Duration
	log     *logger.Logger
}

func NewController(opts Options) *Controller {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}

	c := &Controller{
		opts:   opts,
		after:  opts.After,
		jitter: opts.Jitter,
		log:    logger.L(),
	}
	if c.after == nil {
		c.after = time.After
	}
	if c.jitter == nil {
		c.jitter = func() time.Duration {
			return time.Duration(rand.Int63n(int64(backoffJitter)))
		}
	}
	c.state.Store(int32(StateIdle))

	return c
}

// State reports the controller's current state. Safe to call from any
// goroutine.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Run drives the reconnect loop until ctx is cancelled. Cancellation
// aborts an in-flight connection or backoff wait promptly.
func (c *Controller) Run(ctx context.Context) {
	defer c.setState(StateStopped)

	c.bootstrapToken(ctx)

	for ctx.Err() == nil {
		if c.token == "" {
			c.setState(StateRefreshingToken)
			if err := c.refreshToken(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				c.attempt++
				c.log.Error("Token refresh failed", map[string]interface{}{
					"error":   err.Error(),
					"attempt": c.attempt,
				})
				if !c.backoff(ctx) {
					return
				}
				continue
			}
		}

		c.setState(StateConnecting)
		err := c.runSession(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}

		c.attempt++
		var streamErr *Error
		if errors.As(err, &streamErr) && streamErr.Kind == FailureAuth {
			c.log.Info("Stream rejected token, refreshing", map[string]interface{}{
				"error": err.Error(),
			})
			c.setState(StateRefreshingToken)
			refreshErr := c.refreshToken(ctx)
			if refreshErr == nil {
				continue
			}
			if ctx.Err() != nil {
				return
			}
			// A broken credential must not spin-loop; degrade to the
			// same backoff as a transient failure
			c.log.Error("Token refresh failed", map[string]interface{}{
				"error":   refreshErr.Error(),
				"attempt": c.attempt,
			})
		} else {
			c.log.Error("Stream failed", map[string]interface{}{
				"error":   err.Error(),
				"attempt": c.attempt,
			})
		}

		if !c.backoff(ctx) {
			return
		}
	}
}

// runSession runs one stream session under a child scope. Cancelling
// the parent always aborts the session; a session ending on its own
// never touches the parent.
func (c *Controller) runSession(ctx context.Context) error {
	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sess := &session{
		client:  c.opts.HTTPClient,
		baseURL: c.opts.BaseURL,
		token:   c.token,
		handle:  c.dispatch,
		log:     c.log,
	}

	return sess.run(sessionCtx, func() {
		c.attempt = 0
		c.setState(StateStreaming)
		c.log.Info("Connected to game stream", nil)
	})
}

// bootstrapToken loads the persisted token and probes it. A missing or
// rejected token just leaves the in-memory token empty; the main loop
// refreshes it.
func (c *Controller) bootstrapToken(ctx context.Context) {
	stored, err := c.opts.Tokens.Load()
	if err != nil {
		c.log.Error("Failed to load stored token", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if stored == "" {
		c.log.Info("No stored token, will log in", nil)
		return
	}

	if _, err := c.opts.Auth.WhoAmI(ctx, stored); err != nil {
		c.log.Info("Stored token rejected, will log in", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	c.token = stored
	c.log.Info("Reusing stored token", map[string]interface{}{
		"token_length": len(stored),
	})
}

// refreshToken logs in and persists the new token. The in-memory token
// is replaced even when persistence fails: a write failure costs the
// next restart, not this connection.
func (c *Controller) refreshToken(ctx context.Context) error {
	newToken, err := c.opts.Auth.Login(ctx, c.opts.Email, c.opts.Password)
	if err != nil {
		return err
	}

	c.token = newToken
	if err := c.opts.Tokens.Save(newToken); err != nil {
		c.log.Error("Failed to persist refreshed token", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return nil
}

// backoff waits out the computed delay. Returns false when the wait
// was cut short by lifecycle cancellation.
func (c *Controller) backoff(ctx context.Context) bool {
	c.setState(StateBackingOff)
	delay := c.backoffDelay(c.attempt)

	c.log.Debug("Backing off before reconnect", map[string]interface{}{
		"attempt": c.attempt,
		"delay":   delay.String(),
	})

	select {
	case <-ctx.Done():
		return false
	case <-c.after(delay):
		return true
	}
}

// backoffDelay computes min(30s, 1s * 2^min(attempt, 5)) plus jitter.
func (c *Controller) backoffDelay(attempt int) time.Duration {
	shift := attempt
	if shift > backoffMaxShift {
		shift = backoffMaxShift
	}
	delay := backoffBase << shift
	if delay > backoffCap {
		delay = backoffCap
	}
	return delay + c.jitter()
}

func (c *Controller) setState(next State) {
	prev := State(c.state.Swap(int32(next)))
	if prev != next {
		c.log.Debug("Stream state transition", map[string]interface{}{
			"from": prev.String(),
			"to":   next.String(),
		})
	}
}

type gameRecord struct {
	Status cache.GameStatus `json:"status"`
}

type logPayload struct {
	Content string `json:"content"`
}

// dispatch routes one decoded event. Payload errors are logged and the
// event dropped; nothing here may break the session.
func (c *Controller) dispatch(ctx context.Context, event sse.Event) {
	switch event.Name {
	case "game":
		var records []gameRecord
		if err := json.Unmarshal([]byte(event.Data), &records); err != nil {
			c.log.Error("Failed to parse game event", map[string]interface{}{
				"error":       err.Error(),
				"data_length": len(event.Data),
			})
			return
		}
		if len(records) == 0 {
			c.log.Debug("Game event carried no records", nil)
			return
		}
		c.opts.State.Record(records[0].Status)
		c.log.Debug("Game status updated", map[string]interface{}{
			"nick_name": records[0].Status.NickName,
			"level":     records[0].Status.Level,
		})
	case "log":
		var payload logPayload
		if err := json.Unmarshal([]byte(event.Data), &payload); err != nil {
			c.log.Error("Failed to parse log event", map[string]interface{}{
				"error":       err.Error(),
				"data_length": len(event.Data),
			})
			return
		}
		if payload.Content == "" {
			return
		}
		c.opts.Notifier.Broadcast(ctx, payload.Content)
	default:
		// Unknown event names are ignored for forward compatibility
		c.log.Debug("Ignoring stream event", map[string]interface{}{
			"event": event.Name,
		})
	}
}
