package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgustinBertolini/e-commerce-daw/models"
)

func unsignedJWT(t *testing.T, exp time.Time) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(map[string]any{"exp": exp.Unix(), "user_id": "u1"})
	require.NoError(t, err)
	return fmt.Sprintf("%s.%s.sig", header, base64.RawURLEncoding.EncodeToString(payload))
}

func TestSessionEstablishAndInvalidate(t *testing.T) {
	ctx := context.Background()
	markers := NewMemoryMarkerStore(nil)
	sess := NewSession(markers, time.Hour, nil)

	sess.Establish(ctx, models.Credential{AccessToken: "T1", UserID: "u1"})

	assert.Equal(t, "T1", sess.Token())
	assert.Equal(t, "u1", sess.UserID())

	token, _ := markers.Get(ctx, MarkerToken)
	userID, _ := markers.Get(ctx, MarkerUserID)
	assert.Equal(t, "T1", token)
	assert.Equal(t, "u1", userID)

	sess.Invalidate(ctx)

	assert.Empty(t, sess.Token())
	assert.Empty(t, sess.UserID())
	token, _ = markers.Get(ctx, MarkerToken)
	userID, _ = markers.Get(ctx, MarkerUserID)
	assert.Empty(t, token)
	assert.Empty(t, userID)
}

func TestSessionUpdateTokenKeepsSubject(t *testing.T) {
	ctx := context.Background()
	sess := NewSession(NewMemoryMarkerStore(nil), time.Hour, nil)
	sess.Establish(ctx, models.Credential{AccessToken: "T1", UserID: "u1"})

	sess.UpdateToken(ctx, "T2")

	assert.Equal(t, "T2", sess.Token())
	assert.Equal(t, "u1", sess.UserID())
}

func TestSessionRestore(t *testing.T) {
	ctx := context.Background()
	markers := NewMemoryMarkerStore(nil)
	require.NoError(t, markers.Set(ctx, MarkerToken, "T1", 0))
	require.NoError(t, markers.Set(ctx, MarkerUserID, "u1", 0))

	sess := NewSession(markers, time.Hour, nil)
	sess.Restore(ctx)

	assert.Equal(t, "T1", sess.Token())
	assert.Equal(t, "u1", sess.UserID())
}

func TestSessionValid(t *testing.T) {
	ctx := context.Background()

	t.Run("No Token", func(t *testing.T) {
		sess := NewSession(nil, 0, nil)
		assert.False(t, sess.Valid())
	})

	t.Run("Live JWT", func(t *testing.T) {
		sess := NewSession(nil, 0, nil)
		sess.Establish(ctx, models.Credential{AccessToken: unsignedJWT(t, time.Now().Add(time.Hour))})
		assert.True(t, sess.Valid())
	})

	t.Run("Expired JWT", func(t *testing.T) {
		sess := NewSession(nil, 0, nil)
		sess.Establish(ctx, models.Credential{AccessToken: unsignedJWT(t, time.Now().Add(-time.Hour))})
		assert.False(t, sess.Valid())
	})

	t.Run("Opaque Token Assumed Live", func(t *testing.T) {
		sess := NewSession(nil, 0, nil)
		sess.Establish(ctx, models.Credential{AccessToken: "not-a-jwt"})
		assert.True(t, sess.Valid())
	})
}

func TestPrefixedMarkerStore(t *testing.T) {
	ctx := context.Background()
	inner := NewMemoryMarkerStore(nil)
	a := NewPrefixedMarkerStore("session:a", inner)
	b := NewPrefixedMarkerStore("session:b", inner)

	require.NoError(t, a.Set(ctx, MarkerToken, "TA", 0))
	require.NoError(t, b.Set(ctx, MarkerToken, "TB", 0))

	got, err := a.Get(ctx, MarkerToken)
	require.NoError(t, err)
	assert.Equal(t, "TA", got)

	require.NoError(t, a.Del(ctx, MarkerToken))
	got, _ = a.Get(ctx, MarkerToken)
	assert.Empty(t, got)
	got, _ = b.Get(ctx, MarkerToken)
	assert.Equal(t, "TB", got)
}
