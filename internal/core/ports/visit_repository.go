package ports

import (
	"context"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// HistoryFilter narrows the visit history. All fields are optional and combine with AND.
// DateFrom and DateTo are calendar days; both bounds are inclusive.
type HistoryFilter struct {
	Name     string
	Phone    string
	Email    string
	DateFrom *time.Time
	DateTo   *time.Time
}

// VisitFilter carries the query parameters for the paginated visit listing.
type VisitFilter struct {
	VisitorID  string
	ActiveOnly bool
	Search     string // optional: case-insensitive match on purpose or visitor name, email, phone
	Page       int    // 1-based
	Limit      int
}

// VisitRepository defines persistence operations for visits. Visits returned by
// the finders have Visitor and Photos loaded, photos newest first.
type VisitRepository interface {
	Create(ctx context.Context, v *domain.Visit) error
	// UpdateDetails persists purpose and host name.
	UpdateDetails(ctx context.Context, v *domain.Visit) error
	SetSignature(ctx context.Context, visitID string, sig domain.Signature) error
	FindByID(ctx context.Context, id string) (*domain.Visit, error)
	// CloseIfOpen stores the check-out time and duration of v only if the visit
	// is still open. It reports false when another check-out got there first.
	CloseIfOpen(ctx context.Context, v *domain.Visit) (bool, error)
	ListActive(ctx context.Context) ([]domain.Visit, error)
	History(ctx context.Context, filter HistoryFilter) ([]domain.Visit, error)
	List(ctx context.Context, filter VisitFilter) ([]domain.Visit, int64, error)
	Delete(ctx context.Context, id string) error
	ActivityFor(ctx context.Context, visitorID string) (*VisitorActivity, error)
	CountCheckInsSince(ctx context.Context, since time.Time) (int64, error)
}

// PhotoRepository stores visit photos. Create returns domain.ErrPhotoVisitorMismatch
// when the photo's visitor is not the visitor of its visit.
type PhotoRepository interface {
	Create(ctx context.Context, p *domain.VisitorPhoto) error
}
