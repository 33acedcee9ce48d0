package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// CheckInService runs the visitor check-in and check-out workflow.
type CheckInService struct {
	tx       ports.Transactor
	visitors ports.VisitorRepository
	visits   ports.VisitRepository
	photos   ports.PhotoRepository
	media    ports.MediaStore
	audit    ports.AuditPublisher
	log      zerolog.Logger
	now      func() time.Time
}

func NewCheckInService(
	tx ports.Transactor,
	visitors ports.VisitorRepository,
	visits ports.VisitRepository,
	photos ports.PhotoRepository,
	media ports.MediaStore,
	audit ports.AuditPublisher,
	log zerolog.Logger,
) *CheckInService {
	return &CheckInService{
		tx:       tx,
		visitors: visitors,
		visits:   visits,
		photos:   photos,
		media:    media,
		audit:    audit,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CheckIn resolves the visitor and opens a visit in one transaction. Signature and
// photo are attached afterwards; their failures are reported but never undo the visit.
func (s *CheckInService) CheckIn(ctx context.Context, in ports.CheckInInput) (*ports.CheckInResult, error) {
	var (
		visit      *domain.Visit
		resolution domain.Resolution
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		visitor, res, err := s.ResolveOrCreateVisitor(ctx, in.Name, in.Email, in.Phone)
		if err != nil {
			return err
		}
		resolution = res
		visit = domain.NewVisit(visitor, in.Purpose, in.HostName, s.now())
		return s.visits.Create(ctx, visit)
	})
	if err != nil {
		return nil, fmt.Errorf("check in: %w", err)
	}

	s.log.Info().
		Str("visit_id", visit.ID).
		Str("visitor_id", visit.VisitorID).
		Str("resolution", resolution.String()).
		Msg("visitor checked in")
	s.audit.Publish(domain.VisitEvent{
		Type:       domain.EventCheckedIn,
		VisitID:    visit.ID,
		VisitorID:  visit.VisitorID,
		Resolution: resolution.String(),
		OccurredAt: visit.CheckInTime,
	})

	var attachments []ports.AttachmentResult
	if !in.Signature.Empty() {
		attachments = append(attachments, s.attach(ctx, visit, ports.AttachmentSignature, func() error {
			return s.storeSignature(ctx, visit, in.Signature)
		}))
	}
	if !in.Photo.Empty() {
		attachments = append(attachments, s.attach(ctx, visit, ports.AttachmentPhoto, func() error {
			return s.storePhoto(ctx, visit, in.Photo)
		}))
	}

	if reloaded, err := s.visits.FindByID(ctx, visit.ID); err == nil {
		visit = reloaded
	} else {
		s.log.Warn().Err(err).Str("visit_id", visit.ID).Msg("failed to reload visit after check-in")
	}

	return &ports.CheckInResult{Visit: visit, Resolution: resolution, Attachments: attachments}, nil
}

// ResolveOrCreateVisitor matches by email first, then by phone. A matched visitor
// has name, email and phone overwritten with the submitted values.
func (s *CheckInService) ResolveOrCreateVisitor(ctx context.Context, name, email, phone string) (*domain.Visitor, domain.Resolution, error) {
	resolution := domain.ResolutionMatchedByEmail
	visitor, err := s.visitors.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrVisitorNotFound) {
		resolution = domain.ResolutionMatchedByPhone
		visitor, err = s.visitors.FindByPhone(ctx, phone)
	}

	switch {
	case err == nil:
		visitor.Overwrite(name, email, phone, s.now())
		if err := s.visitors.Update(ctx, visitor); err != nil {
			return nil, 0, fmt.Errorf("update visitor: %w", err)
		}
		return visitor, resolution, nil
	case errors.Is(err, domain.ErrVisitorNotFound):
		visitor = domain.NewVisitor(name, email, phone, s.now())
		if err := s.visitors.Create(ctx, visitor); err != nil {
			return nil, 0, fmt.Errorf("create visitor: %w", err)
		}
		return visitor, domain.ResolutionCreated, nil
	default:
		return nil, 0, fmt.Errorf("resolve visitor: %w", err)
	}
}

// CheckOut closes an active visit. Of two concurrent check-outs exactly one succeeds.
func (s *CheckInService) CheckOut(ctx context.Context, visitID string) (*domain.Visit, error) {
	visit, err := s.visits.FindByID(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	if err := visit.Close(s.now()); err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}

	closed, err := s.visits.CloseIfOpen(ctx, visit)
	if err != nil {
		return nil, fmt.Errorf("check out: %w", err)
	}
	if !closed {
		return nil, fmt.Errorf("check out: %w", domain.ErrVisitAlreadyClosed)
	}

	s.log.Info().Str("visit_id", visit.ID).Int("duration_minutes", *visit.DurationMinutes).Msg("visitor checked out")
	s.audit.Publish(domain.VisitEvent{
		Type:            domain.EventCheckedOut,
		VisitID:         visit.ID,
		VisitorID:       visit.VisitorID,
		DurationMinutes: visit.DurationMinutes,
		OccurredAt:      *visit.CheckOutTime,
	})
	return visit, nil
}

func (s *CheckInService) ListActive(ctx context.Context) ([]domain.Visit, error) {
	visits, err := s.visits.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active visits: %w", err)
	}
	return visits, nil
}

// AttachPhoto adds a photo to an existing visit. Unlike check-in, failures are returned.
func (s *CheckInService) AttachPhoto(ctx context.Context, visitID string, in ports.PhotoInput) (*domain.Visit, error) {
	if in.Empty() {
		return nil, fmt.Errorf("attach photo: %w: no photo supplied", domain.ErrInvalidImageData)
	}
	visit, err := s.visits.FindByID(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("attach photo: %w", err)
	}
	if err := s.storePhoto(ctx, visit, in); err != nil {
		return nil, fmt.Errorf("attach photo: %w", err)
	}
	return s.visits.FindByID(ctx, visitID)
}

// AttachSignature sets or replaces the signature of an existing visit.
func (s *CheckInService) AttachSignature(ctx context.Context, visitID string, in ports.SignatureInput) (*domain.Visit, error) {
	if in.Empty() {
		return nil, fmt.Errorf("attach signature: %w: no signature supplied", domain.ErrInvalidImageData)
	}
	visit, err := s.visits.FindByID(ctx, visitID)
	if err != nil {
		return nil, fmt.Errorf("attach signature: %w", err)
	}
	if err := s.storeSignature(ctx, visit, in); err != nil {
		return nil, fmt.Errorf("attach signature: %w", err)
	}
	return visit, nil
}

func (s *CheckInService) attach(ctx context.Context, visit *domain.Visit, kind ports.AttachmentKind, store func() error) ports.AttachmentResult {
	if err := store(); err != nil {
		s.log.Warn().Err(err).Str("visit_id", visit.ID).Str("attachment", string(kind)).Msg("attachment not stored, visit kept")
		return ports.AttachmentResult{Kind: kind, Err: err}
	}
	return ports.AttachmentResult{Kind: kind, Stored: true}
}

func (s *CheckInService) storePhoto(ctx context.Context, visit *domain.Visit, in ports.PhotoInput) error {
	var (
		ext  string
		data []byte
		err  error
	)
	if in.DataURL != "" {
		ext, data, err = decodeDataURL(in.DataURL)
	} else {
		ext, err = uploadImage(in.File)
		data = in.File.Data
	}
	if err != nil {
		return err
	}

	path, err := s.media.Save(ctx, photoDir, photoFilename(visit.ID, ext), data)
	if err != nil {
		return fmt.Errorf("save photo: %w", err)
	}
	photo := domain.NewVisitorPhoto(visit, path, s.now())
	if err := s.photos.Create(ctx, photo); err != nil {
		return fmt.Errorf("save photo: %w", err)
	}

	s.audit.Publish(domain.VisitEvent{
		Type:       domain.EventPhotoAttached,
		VisitID:    visit.ID,
		VisitorID:  visit.VisitorID,
		OccurredAt: photo.CreatedAt,
	})
	return nil
}

func (s *CheckInService) storeSignature(ctx context.Context, visit *domain.Visit, in ports.SignatureInput) error {
	now := s.now()
	var sig domain.Signature

	switch {
	case in.File != nil:
		ext, err := uploadImage(in.File)
		if err != nil {
			return err
		}
		path, err := s.media.Save(ctx, signatureDir, signatureFilename(now, ext), in.File.Data)
		if err != nil {
			return fmt.Errorf("save signature: %w", err)
		}
		sig = domain.Signature{Kind: domain.SignatureImage, Data: in.Data, Image: path}
	default:
		sig = domain.Signature{Kind: classifySignature(in.Data, in.Vector), Data: in.Data}
		if sig.Kind == domain.SignatureImage {
			ext, data, err := decodeDataURL(strings.TrimSpace(in.Data))
			if err != nil {
				return err
			}
			path, err := s.media.Save(ctx, signatureDir, signatureFilename(now, ext), data)
			if err != nil {
				return fmt.Errorf("save signature: %w", err)
			}
			sig.Image = path
		}
	}

	if err := s.visits.SetSignature(ctx, visit.ID, sig); err != nil {
		return fmt.Errorf("save signature: %w", err)
	}
	visit.ApplySignature(sig)

	s.audit.Publish(domain.VisitEvent{
		Type:       domain.EventSignatureAttached,
		VisitID:    visit.ID,
		VisitorID:  visit.VisitorID,
		OccurredAt: now,
	})
	return nil
}
