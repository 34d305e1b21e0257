package shared

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionContext carries the caller identity resolved from the bearer token.
// Handlers and services receive it explicitly instead of reading storage
// APIs ad hoc.
type SessionContext struct {
	Role  string `json:"role"`
	Token string `json:"-"`
	User  string `json:"user"`
}

// IsAdmin reports whether the session belongs to an administrator.
func (s *SessionContext) IsAdmin() bool {
	return s != nil && s.Role == "admin"
}

// SessionManager resolves bearer tokens against Redis.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	return &SessionManager{client: client, ttl: ttl}
}

func sessionKey(token string) string {
	return "session:" + token
}

// Issue creates a session for the given user and role, returning the token.
func (m *SessionManager) Issue(ctx context.Context, user, role string) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(SessionContext{Role: role, User: user})
	if err != nil {
		return "", fmt.Errorf("shared: marshal session: %w", err)
	}
	if err := m.client.Set(ctx, sessionKey(token), payload, m.ttl).Err(); err != nil {
		return "", fmt.Errorf("shared: store session: %w", err)
	}
	return token, nil
}

// Resolve loads the session for a bearer token. Returns ErrSessionExpired
// when the token is unknown.
func (m *SessionManager) Resolve(ctx context.Context, token string) (*SessionContext, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	payload, err := m.client.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("shared: load session: %w", err)
	}
	var sess SessionContext
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("shared: decode session: %w", err)
	}
	sess.Token = token
	// Sliding expiry.
	_ = m.client.Expire(ctx, sessionKey(token), m.ttl).Err()
	return &sess, nil
}

// Revoke deletes the session for a token.
func (m *SessionManager) Revoke(ctx context.Context, token string) error {
	return m.client.Del(ctx, sessionKey(token)).Err()
}

// TokenFromRequest extracts the bearer token from the Authorization header.
func TokenFromRequest(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return ""
}
