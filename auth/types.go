package auth

import "fmt"

// AuthError marks a credential rejection (non-2xx from the login or
// identity endpoints, or 401/403 on the event stream).
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("authentication failed with status %d: %s", e.StatusCode, e.Message)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
}

// UserInfo is the identity probe response. Only used to confirm the
// token is accepted; the fields themselves are informational.
type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}
