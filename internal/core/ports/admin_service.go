package ports

import (
	"context"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// AdminSession is issued on a successful admin login. Token goes into the session cookie.
type AdminSession struct {
	Token     string
	Email     string
	ExpiresAt time.Time
}

type AdminService interface {
	Login(ctx context.Context, email, password string) (*AdminSession, error)
	// Authenticate returns the admin email bound to token.
	Authenticate(ctx context.Context, token string) (string, error)
	Logout(ctx context.Context, token string) error
	CreateAdmin(ctx context.Context, email, password string) (*domain.AdminActor, error)
}
