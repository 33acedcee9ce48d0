package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// VisitService is the administrative CRUD surface over visits.
type VisitService struct {
	visitors ports.VisitorRepository
	visits   ports.VisitRepository
	log      zerolog.Logger
	now      func() time.Time
}

func NewVisitService(visitors ports.VisitorRepository, visits ports.VisitRepository, log zerolog.Logger) *VisitService {
	return &VisitService{
		visitors: visitors,
		visits:   visits,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *VisitService) Get(ctx context.Context, id string) (*domain.Visit, error) {
	v, err := s.visits.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get visit: %w", err)
	}
	return v, nil
}

func (s *VisitService) List(ctx context.Context, filter ports.VisitFilter) (*ports.VisitPage, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	visits, total, err := s.visits.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}
	return &ports.VisitPage{Items: visits, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// Create opens a visit for an existing visitor without the reconciliation step of check-in.
func (s *VisitService) Create(ctx context.Context, in ports.VisitInput) (*domain.Visit, error) {
	visitor, err := s.visitors.FindByID(ctx, in.VisitorID)
	if err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	visit := domain.NewVisit(visitor, in.Purpose, in.HostName, s.now())
	if err := s.visits.Create(ctx, visit); err != nil {
		return nil, fmt.Errorf("create visit: %w", err)
	}
	s.log.Info().Str("visit_id", visit.ID).Str("visitor_id", visitor.ID).Msg("visit created")
	return visit, nil
}

// Update changes purpose and host name. The visitor of a visit never changes.
func (s *VisitService) Update(ctx context.Context, id string, in ports.VisitInput) (*domain.Visit, error) {
	visit, err := s.visits.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update visit: %w", err)
	}
	visit.Purpose = in.Purpose
	visit.HostName = in.HostName
	if err := s.visits.UpdateDetails(ctx, visit); err != nil {
		return nil, fmt.Errorf("update visit: %w", err)
	}
	return visit, nil
}

func (s *VisitService) Delete(ctx context.Context, id string) error {
	if err := s.visits.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}
	s.log.Info().Str("visit_id", id).Msg("visit deleted")
	return nil
}
