package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrSessionExpired indicates the session token no longer resolves.
	ErrSessionExpired = errors.New("session expired")
	// ErrStaleResponse indicates a response superseded by a newer request.
	ErrStaleResponse = errors.New("stale response discarded")
)

// UserSafeMessage returns a message suitable for end users.
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
