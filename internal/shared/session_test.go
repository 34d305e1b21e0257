package shared

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, time.Minute), mr
}

func TestSessionIssueAndResolve(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestSessionManager(t)

	token, err := mgr.Issue(ctx, "treasurer", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	sess, err := mgr.Resolve(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "treasurer", sess.User)
	require.Equal(t, "admin", sess.Role)
	require.Equal(t, token, sess.Token)
	require.True(t, sess.IsAdmin())
}

func TestSessionResolveUnknownToken(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestSessionManager(t)

	_, err := mgr.Resolve(ctx, "no-such-token")
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = mgr.Resolve(ctx, "")
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionRevoke(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newTestSessionManager(t)

	token, err := mgr.Issue(ctx, "clerk", "staff")
	require.NoError(t, err)
	require.NoError(t, mgr.Revoke(ctx, token))

	_, err = mgr.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	mgr, mr := newTestSessionManager(t)

	token, err := mgr.Issue(ctx, "clerk", "staff")
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = mgr.Resolve(ctx, token)
	require.ErrorIs(t, err, ErrSessionExpired)
}

func TestTokenFromRequest(t *testing.T) {
	r, err := http.NewRequest(http.MethodGet, "/bills", nil)
	require.NoError(t, err)
	require.Empty(t, TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer abc123")
	require.Equal(t, "abc123", TokenFromRequest(r))

	r.Header.Set("Authorization", "Basic abc123")
	require.Empty(t, TokenFromRequest(r))
}
