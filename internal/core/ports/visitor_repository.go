package ports

import (
	"context"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// VisitorFilter carries the query parameters for listing visitors.
type VisitorFilter struct {
	Search string // optional: case-insensitive match on name, email or phone
	Page   int    // 1-based
	Limit  int
}

// VisitorActivity summarises the visits of one visitor.
type VisitorActivity struct {
	TotalVisits int64
	LastVisit   *time.Time
	ActiveVisit *domain.Visit
}

// VisitorRepository defines persistence operations for visitors.
// Create and Update return domain.ErrVisitorConflict when email or phone is taken.
type VisitorRepository interface {
	Create(ctx context.Context, v *domain.Visitor) error
	Update(ctx context.Context, v *domain.Visitor) error
	FindByID(ctx context.Context, id string) (*domain.Visitor, error)
	FindByEmail(ctx context.Context, email string) (*domain.Visitor, error)
	FindByPhone(ctx context.Context, phone string) (*domain.Visitor, error)
	List(ctx context.Context, filter VisitorFilter) ([]domain.Visitor, int64, error)
	// Delete removes the visitor together with its visits and photos.
	Delete(ctx context.Context, id string) error
}
