package ports

import (
	"context"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// VisitorInput carries the editable fields of a visitor.
type VisitorInput struct {
	Name  string
	Email string
	Phone string
}

// VisitorDetail is a visitor together with its visit summary.
type VisitorDetail struct {
	Visitor  domain.Visitor
	Activity VisitorActivity
}

type VisitorPage struct {
	Items []VisitorDetail
	Total int64
	Page  int
	Limit int
}

type VisitorService interface {
	// Search finds a visitor by email first, then by phone.
	// It returns domain.ErrVisitorNotFound when neither matches.
	Search(ctx context.Context, email, phone string) (*VisitorDetail, error)
	Get(ctx context.Context, id string) (*VisitorDetail, error)
	List(ctx context.Context, filter VisitorFilter) (*VisitorPage, error)
	Create(ctx context.Context, in VisitorInput) (*VisitorDetail, error)
	Update(ctx context.Context, id string, in VisitorInput) (*VisitorDetail, error)
	Delete(ctx context.Context, id string) error
}

// VisitInput carries the editable fields of a visit.
type VisitInput struct {
	VisitorID string
	Purpose   string
	HostName  string
}

type VisitPage struct {
	Items []domain.Visit
	Total int64
	Page  int
	Limit int
}

type VisitService interface {
	Get(ctx context.Context, id string) (*domain.Visit, error)
	List(ctx context.Context, filter VisitFilter) (*VisitPage, error)
	Create(ctx context.Context, in VisitInput) (*domain.Visit, error)
	Update(ctx context.Context, id string, in VisitInput) (*domain.Visit, error)
	Delete(ctx context.Context, id string) error
}
