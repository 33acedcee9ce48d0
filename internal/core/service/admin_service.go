package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// AdminService implements admin login, session checks and account creation.
// The session cookie carries a signed token whose "sid" claim must still exist
// in the SessionStore, so logging out revokes it immediately.
type AdminService struct {
	repo       ports.AdminRepository
	sessions   ports.SessionStore
	limiter    ports.LoginLimiter
	secret     []byte
	sessionTTL time.Duration
	log        zerolog.Logger
	now        func() time.Time
}

func NewAdminService(
	repo ports.AdminRepository,
	sessions ports.SessionStore,
	limiter ports.LoginLimiter,
	secret string,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AdminService {
	if sessionTTL <= 0 {
		sessionTTL = 8 * time.Hour
	}
	return &AdminService{
		repo:       repo,
		sessions:   sessions,
		limiter:    limiter,
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *AdminService) Login(ctx context.Context, email, password string) (*ports.AdminSession, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	allowed, err := s.limiter.Allow(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login limiter unavailable, allowing attempt")
	} else if !allowed {
		return nil, domain.ErrTooManyAttempts
	}

	admin, err := s.repo.FindActiveByEmail(ctx, email)
	if errors.Is(err, domain.ErrAdminNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLastLogin(ctx, admin.ID, now); err != nil {
		s.log.Warn().Err(err).Uint("admin_id", admin.ID).Msg("failed to record last login")
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.log.Warn().Err(err).Msg("failed to reset login attempts")
	}

	sid := uuid.NewString()
	if err := s.sessions.Create(ctx, sid, admin.Email, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("admin login: create session: %w", err)
	}
	expiresAt := now.Add(s.sessionTTL)
	token, err := s.signToken(sid, admin.Email, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("admin login: %w", err)
	}

	s.log.Info().Str("admin", admin.Email).Msg("admin logged in")
	return &ports.AdminSession{Token: token, Email: admin.Email, ExpiresAt: expiresAt}, nil
}

func (s *AdminService) Authenticate(ctx context.Context, token string) (string, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return "", domain.ErrSessionInvalid
	}
	sid, _ := claims["sid"].(string)
	sub, _ := claims["sub"].(string)
	if sid == "" || sub == "" {
		return "", domain.ErrSessionInvalid
	}

	email, err := s.sessions.Lookup(ctx, sid)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionInvalid) {
			s.log.Warn().Err(err).Msg("session lookup failed")
		}
		return "", domain.ErrSessionInvalid
	}
	if email != sub {
		return "", domain.ErrSessionInvalid
	}
	return email, nil
}

// Logout revokes the server-side session. Unparseable tokens are ignored.
func (s *AdminService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		return fmt.Errorf("admin logout: %w", err)
	}
	return nil
}

func (s *AdminService) CreateAdmin(ctx context.Context, email, password string) (*domain.AdminActor, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	admin := &domain.AdminActor{
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     true,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	return admin, nil
}

func (s *AdminService) signToken(sid, email string, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": email,
		"sid": sid,
		"exp": expiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *AdminService) parseToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}
