package services

import (
	"context"
	"net/http"
	"regexp"

	"go.uber.org/zap"

	"github.com/AgustinBertolini/e-commerce-daw/apperrors"
	"github.com/AgustinBertolini/e-commerce-daw/auth"
	"github.com/AgustinBertolini/e-commerce-daw/clients"
	"github.com/AgustinBertolini/e-commerce-daw/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// AuthService owns the login flow: lockout check, backend credential
// exchange, throttle bookkeeping and session establishment.
type AuthService struct {
	throttle *auth.Throttle
	log      *zap.Logger
}

func NewAuthService(throttle *auth.Throttle, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{throttle: throttle, log: log}
}

// LoginRequest is the credential pair submitted by the login form.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest creates a new backend account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"nombre" binding:"required"`
	LastName string `json:"apellido" binding:"required"`
}

// Login authenticates against the backend. A locked key fails fast
// with a LockedOutError and never reaches the network; a backend
// rejection counts toward the lockout threshold.
func (s *AuthService) Login(ctx context.Context, api *clients.BackendClient, sess *auth.Session, req LoginRequest) (models.Credential, error) {
	if req.Email == "" || req.Password == "" {
		return models.Credential{}, apperrors.New(http.StatusBadRequest, "Email and password are required", nil)
	}
	if !emailPattern.MatchString(req.Email) {
		return models.Credential{}, apperrors.New(http.StatusBadRequest, "Invalid email address", nil)
	}

	if s.throttle.IsLocked(ctx, req.Email) {
		return models.Credential{}, &apperrors.LockedOutError{
			RemainingSeconds: s.throttle.RemainingSeconds(ctx, req.Email),
		}
	}

	resp, err := api.Do(ctx, http.MethodPost, "/api/login", nil, mustJSON(map[string]string{
		"email":    req.Email,
		"password": req.Password,
	}))
	if err != nil {
		// Transport failure: the attempt never reached the backend,
		// so it does not count toward the lockout.
		return models.Credential{}, apperrors.New(http.StatusBadGateway, "Backend unreachable", err)
	}

	var cred models.Credential
	if decodeErr := clients.DecodeJSON(resp, &cred); decodeErr != nil || cred.AccessToken == "" {
		if locked := s.throttle.RecordFailure(ctx, req.Email); locked {
			s.log.Warn("Login lockout triggered", zap.String("email", req.Email))
			return models.Credential{}, &apperrors.LockedOutError{
				RemainingSeconds: s.throttle.RemainingSeconds(ctx, req.Email),
			}
		}
		return models.Credential{}, apperrors.ErrInvalidCredentials
	}

	s.throttle.RecordSuccess(ctx, req.Email)
	sess.Establish(ctx, cred)
	s.log.Info("Login succeeded", zap.String("user_id", cred.UserID))
	return cred, nil
}

// Logout erases the session credential and its persisted markers.
func (s *AuthService) Logout(ctx context.Context, sess *auth.Session) {
	sess.Invalidate(ctx)
}

// Register creates a backend account. Registration is never throttled;
// only login failures count.
func (s *AuthService) Register(ctx context.Context, api *clients.BackendClient, req RegisterRequest) error {
	if !emailPattern.MatchString(req.Email) {
		return apperrors.New(http.StatusBadRequest, "Invalid email address", nil)
	}
	if err := api.PostJSON(ctx, "/api/register", req, nil); err != nil {
		return err
	}
	return nil
}
