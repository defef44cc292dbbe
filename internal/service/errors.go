package service

import (
	"errors"
	"fmt"
)

var (
	// ErrAuthExpired means the platform rejected the connection's credentials
	// (401/403). The connection is deactivated before this is returned.
	ErrAuthExpired = errors.New("platform authorization expired")

	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
)

// GraphError carries the HTTP status of a failed Graph API call so callers
// can tell fatal auth failures from transient platform errors.
type GraphError struct {
	StatusCode int
	Message    string
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api error: status %d: %s", e.StatusCode, e.Message)
}

// IsAuthFailure reports whether err is a Graph 401/403.
func IsAuthFailure(err error) bool {
	var ge *GraphError
	if errors.As(err, &ge) {
		return ge.StatusCode == 401 || ge.StatusCode == 403
	}
	return false
}
