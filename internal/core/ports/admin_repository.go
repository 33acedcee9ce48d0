package ports

import (
	"context"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// AdminRepository defines persistence for dashboard administrators.
type AdminRepository interface {
	FindActiveByEmail(ctx context.Context, email string) (*domain.AdminActor, error)
	Create(ctx context.Context, admin *domain.AdminActor) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
}

// SessionStore keeps server-side admin sessions.
type SessionStore interface {
	Create(ctx context.Context, sessionID, email string, ttl time.Duration) error
	// Lookup returns the email bound to sessionID or domain.ErrSessionInvalid.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Delete(ctx context.Context, sessionID string) error
}

// LoginLimiter throttles failed admin logins per key.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}
