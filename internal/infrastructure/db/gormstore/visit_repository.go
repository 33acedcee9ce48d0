package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

type VisitRepository struct {
	db *gorm.DB
}

func NewVisitRepository(db *gorm.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

func (r *VisitRepository) withRelations(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("Visitor").
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC")
		})
}

func (r *VisitRepository) Create(ctx context.Context, v *domain.Visit) error {
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(v).Error; err != nil {
		return fmt.Errorf("insert visit: %w", err)
	}
	return nil
}

func (r *VisitRepository) UpdateDetails(ctx context.Context, v *domain.Visit) error {
	return r.update(ctx, v.ID, map[string]interface{}{
		"purpose":   v.Purpose,
		"host_name": v.HostName,
	})
}

func (r *VisitRepository) SetSignature(ctx context.Context, visitID string, sig domain.Signature) error {
	return r.update(ctx, visitID, map[string]interface{}{
		"signature_data":  sig.Data,
		"signature_type":  sig.Kind,
		"signature_image": sig.Image,
	})
}

func (r *VisitRepository) update(ctx context.Context, id string, values map[string]interface{}) error {
	res := conn(ctx, r.db).Model(&domain.Visit{}).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("update visit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrVisitNotFound
	}
	return nil
}

func (r *VisitRepository) FindByID(ctx context.Context, id string) (*domain.Visit, error) {
	var v domain.Visit
	if err := r.withRelations(ctx).Where("visits.id = ?", id).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVisitNotFound
		}
		return nil, fmt.Errorf("find visit: %w", err)
	}
	return &v, nil
}

// CloseIfOpen is a conditional update: only the caller that still sees
// check_out_time NULL affects a row.
func (r *VisitRepository) CloseIfOpen(ctx context.Context, v *domain.Visit) (bool, error) {
	if v.CheckOutTime == nil || v.DurationMinutes == nil {
		return false, fmt.Errorf("close visit %s: check-out not set", v.ID)
	}
	res := conn(ctx, r.db).Model(&domain.Visit{}).
		Where("id = ? AND check_out_time IS NULL", v.ID).
		Updates(map[string]interface{}{
			"check_out_time":   *v.CheckOutTime,
			"duration_minutes": *v.DurationMinutes,
		})
	if res.Error != nil {
		return false, fmt.Errorf("close visit: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *VisitRepository) ListActive(ctx context.Context) ([]domain.Visit, error) {
	var visits []domain.Visit
	err := r.withRelations(ctx).
		Where("check_out_time IS NULL").
		Order("check_in_time DESC").
		Find(&visits).Error
	if err != nil {
		return nil, fmt.Errorf("list active visits: %w", err)
	}
	return visits, nil
}

// History joins visitors so name, phone and email can be matched case-insensitively.
func (r *VisitRepository) History(ctx context.Context, f ports.HistoryFilter) ([]domain.Visit, error) {
	q := r.withRelations(ctx).Joins("JOIN visitors ON visitors.id = visits.visitor_id")

	if f.Name != "" {
		q = q.Where("LOWER(visitors.name) LIKE ?", containsPattern(f.Name))
	}
	if f.Phone != "" {
		q = q.Where("LOWER(visitors.phone) LIKE ?", containsPattern(f.Phone))
	}
	if f.Email != "" {
		q = q.Where("LOWER(visitors.email) LIKE ?", containsPattern(f.Email))
	}
	if f.DateFrom != nil {
		q = q.Where("visits.check_in_time >= ?", startOfDay(*f.DateFrom))
	}
	if f.DateTo != nil {
		q = q.Where("visits.check_in_time < ?", startOfDay(*f.DateTo).AddDate(0, 0, 1))
	}

	var visits []domain.Visit
	if err := q.Order("visits.check_in_time DESC").Find(&visits).Error; err != nil {
		return nil, fmt.Errorf("visit history: %w", err)
	}
	return visits, nil
}

func (r *VisitRepository) List(ctx context.Context, f ports.VisitFilter) ([]domain.Visit, int64, error) {
	q := conn(ctx, r.db).Model(&domain.Visit{})
	if f.VisitorID != "" {
		q = q.Where("visits.visitor_id = ?", f.VisitorID)
	}
	if f.ActiveOnly {
		q = q.Where("visits.check_out_time IS NULL")
	}
	if f.Search != "" {
		p := containsPattern(f.Search)
		q = q.Joins("JOIN visitors ON visitors.id = visits.visitor_id").
			Where("LOWER(visits.purpose) LIKE ? OR LOWER(visitors.name) LIKE ? OR LOWER(visitors.email) LIKE ? OR LOWER(visitors.phone) LIKE ?", p, p, p, p)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	var visits []domain.Visit
	err := q.Preload("Visitor").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }).
		Order("visits.check_in_time DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&visits).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	return visits, total, nil
}

// Delete removes the visit and its photos.
func (r *VisitRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("visit_id = ?", id).Delete(&domain.VisitorPhoto{}).Error; err != nil {
			return fmt.Errorf("delete visit photos: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Visit{})
		if res.Error != nil {
			return fmt.Errorf("delete visit: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrVisitNotFound
		}
		return nil
	})
}

func (r *VisitRepository) ActivityFor(ctx context.Context, visitorID string) (*ports.VisitorActivity, error) {
	activity := &ports.VisitorActivity{}
	db := conn(ctx, r.db)

	if err := db.Model(&domain.Visit{}).Where("visitor_id = ?", visitorID).Count(&activity.TotalVisits).Error; err != nil {
		return nil, fmt.Errorf("count visitor visits: %w", err)
	}
	if activity.TotalVisits == 0 {
		return activity, nil
	}

	var latest []domain.Visit
	if err := db.Where("visitor_id = ?", visitorID).Order("check_in_time DESC").Limit(1).Find(&latest).Error; err != nil {
		return nil, fmt.Errorf("latest visit: %w", err)
	}
	if len(latest) == 1 {
		last := latest[0].CheckInTime
		activity.LastVisit = &last
	}

	var active []domain.Visit
	err := r.withRelations(ctx).
		Where("visitor_id = ? AND check_out_time IS NULL", visitorID).
		Order("check_in_time DESC").
		Limit(1).
		Find(&active).Error
	if err != nil {
		return nil, fmt.Errorf("active visit: %w", err)
	}
	if len(active) == 1 {
		activity.ActiveVisit = &active[0]
	}
	return activity, nil
}

func (r *VisitRepository) CountCheckInsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&domain.Visit{}).Where("check_in_time >= ?", since.UTC()).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count check-ins: %w", err)
	}
	return n, nil
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
