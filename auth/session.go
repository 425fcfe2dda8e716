package auth

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/models"
)

// Session owns the credential for one storefront session. It is
// written on successful login or refresh and erased on logout or
// unrecoverable refresh failure. Marker persistence is best effort;
// the in-memory credential is authoritative.
type Session struct {
	mu        sync.RWMutex
	cred      models.Credential
	markers   MarkerStore
	markerTTL time.Duration
	log       *zap.Logger
}

func NewSession(markers MarkerStore, markerTTL time.Duration, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{markers: markers, markerTTL: markerTTL, log: log}
}

// Restore loads a persisted credential, if any, into the session.
func (s *Session) Restore(ctx context.Context) {
	if s.markers == nil {
		return
	}
	token, err := s.markers.Get(ctx, MarkerToken)
	if err != nil || token == "" {
		return
	}
	userID, _ := s.markers.Get(ctx, MarkerUserID)

	s.mu.Lock()
	s.cred = models.Credential{AccessToken: token, UserID: userID}
	s.mu.Unlock()
}

// Establish stores a freshly issued credential.
func (s *Session) Establish(ctx context.Context, cred models.Credential) {
	s.mu.Lock()
	s.cred = cred
	s.mu.Unlock()

	s.persist(ctx, cred)
}

// Token returns the held access token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.AccessToken
}

// UserID returns the subject id of the session, empty when
// unauthenticated.
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cred.UserID
}

// UpdateToken swaps in a refreshed access token, keeping the subject.
func (s *Session) UpdateToken(ctx context.Context, token string) {
	s.mu.Lock()
	s.cred.AccessToken = token
	cred := s.cred
	s.mu.Unlock()

	s.persist(ctx, cred)
}

// Invalidate erases the credential and its persisted markers.
func (s *Session) Invalidate(ctx context.Context) {
	s.mu.Lock()
	s.cred = models.Credential{}
	s.mu.Unlock()

	if s.markers == nil {
		return
	}
	if err := s.markers.Del(ctx, MarkerToken, MarkerUserID); err != nil {
		s.log.Warn("Failed to clear session markers", zap.Error(err))
	}
}

// Valid reports whether the session holds a token that has not passed
// its exp claim. The token is decoded without signature verification;
// the backend remains the authority, this is only a local probe to
// spot expired sessions without a network round trip.
func (s *Session) Valid() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := &jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque (non-JWT) tokens are assumed live until the backend
		// says otherwise.
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return claims.ExpiresAt.After(time.Now())
}

func (s *Session) persist(ctx context.Context, cred models.Credential) {
	if s.markers == nil {
		return
	}
	if err := s.markers.Set(ctx, MarkerToken, cred.AccessToken, s.markerTTL); err != nil {
		s.log.Warn("Failed to persist token marker", zap.Error(err))
	}
	if cred.UserID != "" {
		if err := s.markers.Set(ctx, MarkerUserID, cred.UserID, s.markerTTL); err != nil {
			s.log.Warn("Failed to persist user marker", zap.Error(err))
		}
	}
}
