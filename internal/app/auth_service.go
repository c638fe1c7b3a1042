package app

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"quizctl/internal/domain"
)

// ErrOpaqueToken is returned by Claims when the stored token is not a JWT.
var ErrOpaqueToken = errors.New("token is not a JWT")

// AuthService owns the session store: it is written only by a successful
// login and cleared only by logout.
type AuthService struct {
	api       AuthAPI
	sessions  SessionRepository
	validator *Validator
	logger    *zap.Logger
}

func NewAuthService(api AuthAPI, sessions SessionRepository, v *Validator, logger *zap.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, validator: v, logger: logger.Named("auth")}
}

// Login authenticates and stores {token, email, role} in a single write.
// Any failure leaves the stored session as it was.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (session domain.Session, err error) {
	defer func(start time.Time) { logOutcome(s.logger, "login", start, err, zap.String("email", req.Email)) }(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return domain.Session{}, err
	}
	resp, err := s.api.Login(ctx, req)
	if err != nil {
		return domain.Session{}, failure("login", "Login failed", err)
	}
	if resp.Token == "" {
		return domain.Session{}, failure("login", "Login failed", errors.New("login response carried no token"))
	}

	session = domain.Session{Token: resp.Token, Email: resp.Email, Role: resp.Role}
	if err := s.sessions.Save(ctx, session); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (err error) {
	defer func(start time.Time) { logOutcome(s.logger, "register", start, err, zap.String("email", req.Email)) }(time.Now())

	if err := s.validator.Validate(req); err != nil {
		return err
	}
	if err := s.api.Register(ctx, req); err != nil {
		return failure("register", "Registration failed", err)
	}
	return nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// Current returns the stored session or domain.ErrNotLoggedIn.
func (s *AuthService) Current(ctx context.Context) (domain.Session, error) {
	return s.sessions.Load(ctx)
}

// Token is a token source for the API client; no session means no token.
func (s *AuthService) Token(ctx context.Context) (string, error) {
	session, err := s.sessions.Load(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return session.Token, nil
}

// TokenClaims is what the CLI shows about a stored token.
type TokenClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Claims decodes the stored token without verifying it. Nothing here
// enforces expiry; the server stays the authority on validity.
func (s *AuthService) Claims(ctx context.Context) (TokenClaims, error) {
	session, err := s.sessions.Load(ctx)
	if err != nil {
		return TokenClaims{}, err
	}
	var claims TokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(session.Token, &claims); err != nil {
		return TokenClaims{}, ErrOpaqueToken
	}
	return claims, nil
}
