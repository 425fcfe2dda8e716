package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
)

type loginFixture struct {
	service  *AuthService
	session  *auth.Session
	client   *clients.BackendClient
	clock    *auth.MockClock
	attempts *int
}

// fakeBackend accepts password "secret123" for a@b.com.
func newLoginFixture(t *testing.T) *loginFixture {
	t.Helper()
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		attempts++
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] == "a@b.com" && body["password"] == "secret123" {
			json.NewEncoder(w).Encode(map[string]string{"token": "T1", "userId": "u1"})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"message": "Credenciales inválidas"})
	}))
	t.Cleanup(server.Close)

	clock := auth.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	markers := auth.NewMemoryMarkerStore(clock)
	throttle := auth.NewThrottle(3, 30*time.Second, clock, markers, nil)
	t.Cleanup(throttle.Close)
	sess := auth.NewSession(markers, time.Hour, nil)
	client := clients.NewBackendClient(clients.Config{BaseURL: server.URL}, sess, nil)

	return &loginFixture{
		service:  NewAuthService(throttle, nil),
		session:  sess,
		client:   client,
		clock:    clock,
		attempts: &attempts,
	}
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newLoginFixture(t)

		cred, err := f.service.Login(context.Background(), f.client, f.session, LoginRequest{Email: "a@b.com", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "T1", cred.AccessToken)
		assert.Equal(t, "u1", cred.UserID)
		assert.Equal(t, "T1", f.session.Token())
	})

	t.Run("Wrong Password", func(t *testing.T) {
		f := newLoginFixture(t)

		_, err := f.service.Login(context.Background(), f.client, f.session, LoginRequest{Email: "a@b.com", Password: "wrong"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		assert.Empty(t, f.session.Token())
	})

	t.Run("Missing Fields", func(t *testing.T) {
		f := newLoginFixture(t)

		_, err := f.service.Login(context.Background(), f.client, f.session, LoginRequest{Email: "a@b.com"})

		require.Error(t, err)
		assert.Equal(t, 0, *f.attempts, "validation failures never reach the backend")
	})

	t.Run("Invalid Email", func(t *testing.T) {
		f := newLoginFixture(t)

		_, err := f.service.Login(context.Background(), f.client, f.session, LoginRequest{Email: "not-an-email", Password: "x"})

		require.Error(t, err)
		assert.Equal(t, 0, *f.attempts)
	})
}

func TestLoginLockout(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	// Third failure crosses the threshold
	_, err := f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "wrong"})
	var locked *apperrors.LockedOutError
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RemainingSeconds, 0)

	// Fourth attempt is rejected before the network, even with the
	// correct password
	attemptsBefore := *f.attempts
	_, err = f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.ErrorAs(t, err, &locked)
	assert.Greater(t, locked.RemainingSeconds, 0)
	assert.Equal(t, attemptsBefore, *f.attempts, "locked attempts never contact the backend")

	// Window elapses; login succeeds again
	f.clock.Advance(31 * time.Second)
	_, err = f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "secret123"})
	assert.NoError(t, err)
}

func TestLoginSuccessResetsCounter(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "wrong"})
	}
	_, err := f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)

	// Counter was reset: two more failures do not lock
	for i := 0; i < 2; i++ {
		_, err = f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
}

func TestLoginTransportFailureDoesNotCount(t *testing.T) {
	clock := auth.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	markers := auth.NewMemoryMarkerStore(clock)
	throttle := auth.NewThrottle(3, 30*time.Second, clock, markers, nil)
	t.Cleanup(throttle.Close)
	sess := auth.NewSession(markers, time.Hour, nil)
	// Nothing listens here
	client := clients.NewBackendClient(clients.Config{BaseURL: "http://127.0.0.1:1"}, sess, nil)
	service := NewAuthService(throttle, nil)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := service.Login(ctx, client, sess, LoginRequest{Email: "a@b.com", Password: "secret123"})
		require.Error(t, err)
		var locked *apperrors.LockedOutError
		assert.False(t, errors.As(err, &locked), "transport failures must not trigger lockout")
	}
	assert.False(t, throttle.IsLocked(ctx, "a@b.com"))
}

func TestLogout(t *testing.T) {
	f := newLoginFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, f.client, f.session, LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, f.session.Token())

	f.service.Logout(ctx, f.session)

	assert.Empty(t, f.session.Token())
	assert.Empty(t, f.session.UserID())
}

func TestRegister(t *testing.T) {
	var got RegisterRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/register", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	sess := auth.NewSession(nil, 0, nil)
	client := clients.NewBackendClient(clients.Config{BaseURL: server.URL}, sess, nil)
	throttle := auth.NewThrottle(3, 30*time.Second, nil, nil, nil)
	t.Cleanup(throttle.Close)
	service := NewAuthService(throttle, nil)

	err := service.Register(context.Background(), client, RegisterRequest{
		Email: "new@b.com", Password: "pw", Name: "Nombre", LastName: "Apellido",
	})

	require.NoError(t, err)
	assert.Equal(t, "new@b.com", got.Email)
	assert.Equal(t, "Nombre", got.Name)
}
