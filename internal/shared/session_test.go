package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionManager(client, "test_session", "secret", time.Hour, false)
}

func TestSessionRoundTrip(t *testing.T) {
	sm := newManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser(42)
	sess.Set("theme", "dark")

	res := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, res, req, sess))

	cookies := res.Result().Cookies()
	require.NotEmpty(t, cookies)

	next := httptest.NewRequest(http.MethodGet, "/", nil)
	next.AddCookie(cookies[0])
	restored, err := sm.Load(ctx, next)
	require.NoError(t, err)

	id, ok := restored.UserID()
	require.True(t, ok)
	require.Equal(t, int64(42), id)
	require.Equal(t, "dark", restored.Get("theme"))
}

func TestUserIDRejectsMalformedValues(t *testing.T) {
	var nilSess *Session
	_, ok := nilSess.UserID()
	require.False(t, ok)

	sess := &Session{}
	_, ok = sess.UserID()
	require.False(t, ok)

	sess.userID = "not-a-number"
	_, ok = sess.UserID()
	require.False(t, ok)

	sess.userID = "-4"
	_, ok = sess.UserID()
	require.False(t, ok)
}

func TestActorIDWithoutSession(t *testing.T) {
	_, ok := ActorID(context.Background())
	require.False(t, ok)
}

func TestCSRFVerifyRejectsForeignToken(t *testing.T) {
	manager := NewCSRFManager("secret")
	sess := &Session{ID: "abc"}

	token, err := manager.EnsureToken(context.Background(), sess)
	require.NoError(t, err)

	require.NoError(t, manager.VerifyToken(context.Background(), sess, token))
	require.ErrorIs(t, manager.VerifyToken(context.Background(), sess, "forged"), ErrCSRFTokenMismatch)
	require.ErrorIs(t, manager.VerifyToken(context.Background(), sess, ""), ErrCSRFTokenMissing)
}
