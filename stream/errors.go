package stream

// FailureKind classifies how a stream session ended.
type FailureKind int

const (
	// FailureTransient covers network errors, 5xx responses, and any
	// EOF not caused by our own cancellation. Always retried.
	FailureTransient FailureKind = iota
	// FailureAuth covers 401/403 from the stream endpoint. Triggers a
	// token refresh before the next attempt.
	FailureAuth
)

func (k FailureKind) String() string {
	switch k {
	case FailureTransient:
		return "transient"
	case FailureAuth:
		return "auth"
	default:
		return "unknown"
	}
}

// Error wraps a session failure with its classification.
type Error struct {
	Kind FailureKind
	Err  error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
