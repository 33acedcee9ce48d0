package gormstore

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// Create stores p after checking that p.VisitorID is the visitor of p.VisitID.
func (r *PhotoRepository) Create(ctx context.Context, p *domain.VisitorPhoto) error {
	db := conn(ctx, r.db)

	var visit domain.Visit
	if err := db.Select("id", "visitor_id").Where("id = ?", p.VisitID).First(&visit).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrVisitNotFound
		}
		return fmt.Errorf("find photo visit: %w", err)
	}
	if visit.VisitorID != p.VisitorID {
		return domain.ErrPhotoVisitorMismatch
	}

	if err := db.Omit(clause.Associations).Create(p).Error; err != nil {
		return fmt.Errorf("insert photo: %w", err)
	}
	return nil
}
