package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// VisitorService manages visitor records and the returning-visitor lookup.
type VisitorService struct {
	visitors ports.VisitorRepository
	visits   ports.VisitRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewVisitorService(visitors ports.VisitorRepository, visits ports.VisitRepository, log zerolog.Logger) *VisitorService {
	return &VisitorService{
		visitors: visitors,
		visits:   visits,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *VisitorService) Search(ctx context.Context, email, phone string) (*ports.VisitorDetail, error) {
	if email == "" && phone == "" {
		return nil, domain.ErrSearchCriteriaRequired
	}

	var (
		visitor *domain.Visitor
		err     = domain.ErrVisitorNotFound
	)
	if email != "" {
		visitor, err = s.visitors.FindByEmail(ctx, email)
	}
	if errors.Is(err, domain.ErrVisitorNotFound) && phone != "" {
		visitor, err = s.visitors.FindByPhone(ctx, phone)
	}
	if err != nil {
		return nil, fmt.Errorf("search visitor: %w", err)
	}
	return s.detail(ctx, visitor)
}

func (s *VisitorService) Get(ctx context.Context, id string) (*ports.VisitorDetail, error) {
	visitor, err := s.visitors.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visitor: %w", err)
	}
	return s.detail(ctx, visitor)
}

func (s *VisitorService) List(ctx context.Context, filter ports.VisitorFilter) (*ports.VisitorPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	visitors, total, err := s.visitors.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}

	items := make([]ports.VisitorDetail, 0, len(visitors))
	for i := range visitors {
		d, err := s.detail(ctx, &visitors[i])
		if err != nil {
			return nil, fmt.Errorf("list visitors: %w", err)
		}
		items = append(items, *d)
	}
	return &ports.VisitorPage{Items: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *VisitorService) Create(ctx context.Context, in ports.VisitorInput) (*ports.VisitorDetail, error) {
	visitor := domain.NewVisitor(in.Name, in.Email, in.Phone, s.now())
	if err := s.visitors.Create(ctx, visitor); err != nil {
		return nil, fmt.Errorf("create visitor: %w", err)
	}
	s.log.Info().Str("visitor_id", visitor.ID).Msg("visitor created")
	return &ports.VisitorDetail{Visitor: *visitor}, nil
}

func (s *VisitorService) Update(ctx context.Context, id string, in ports.VisitorInput) (*ports.VisitorDetail, error) {
	visitor, err := s.visitors.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update visitor: %w", err)
	}
	visitor.Overwrite(in.Name, in.Email, in.Phone, s.now())
	if err := s.visitors.Update(ctx, visitor); err != nil {
		return nil, fmt.Errorf("update visitor: %w", err)
	}
	return s.detail(ctx, visitor)
}

func (s *VisitorService) Delete(ctx context.Context, id string) error {
	if err := s.visitors.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete visitor: %w", err)
	}
	s.log.Info().Str("visitor_id", id).Msg("visitor deleted")
	return nil
}

func (s *VisitorService) detail(ctx context.Context, visitor *domain.Visitor) (*ports.VisitorDetail, error) {
	activity, err := s.visits.ActivityFor(ctx, visitor.ID)
	if err != nil {
		return nil, fmt.Errorf("visitor activity: %w", err)
	}
	return &ports.VisitorDetail{Visitor: *visitor, Activity: *activity}, nil
}
