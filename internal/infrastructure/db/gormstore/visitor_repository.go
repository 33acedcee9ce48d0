package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

type VisitorRepository struct {
	db *gorm.DB
}

func NewVisitorRepository(db *gorm.DB) *VisitorRepository {
	return &VisitorRepository{db: db}
}

func (r *VisitorRepository) Create(ctx context.Context, v *domain.Visitor) error {
	if err := conn(ctx, r.db).Create(v).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrVisitorConflict
		}
		return fmt.Errorf("insert visitor: %w", err)
	}
	return nil
}

func (r *VisitorRepository) Update(ctx context.Context, v *domain.Visitor) error {
	res := conn(ctx, r.db).Model(&domain.Visitor{}).Where("id = ?", v.ID).Updates(map[string]interface{}{
		"name":       v.Name,
		"email":      v.Email,
		"phone":      v.Phone,
		"updated_at": v.UpdatedAt,
	})
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return domain.ErrVisitorConflict
		}
		return fmt.Errorf("update visitor: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrVisitorNotFound
	}
	return nil
}

func (r *VisitorRepository) FindByID(ctx context.Context, id string) (*domain.Visitor, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *VisitorRepository) FindByEmail(ctx context.Context, email string) (*domain.Visitor, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *VisitorRepository) FindByPhone(ctx context.Context, phone string) (*domain.Visitor, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

func (r *VisitorRepository) findOne(ctx context.Context, query string, arg string) (*domain.Visitor, error) {
	var v domain.Visitor
	if err := conn(ctx, r.db).Where(query, arg).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrVisitorNotFound
		}
		return nil, fmt.Errorf("find visitor: %w", err)
	}
	return &v, nil
}

func (r *VisitorRepository) List(ctx context.Context, f ports.VisitorFilter) ([]domain.Visitor, int64, error) {
	q := conn(ctx, r.db).Model(&domain.Visitor{})
	if f.Search != "" {
		like := "%" + strings.ToLower(f.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count visitors: %w", err)
	}

	var visitors []domain.Visitor
	err := q.Order("created_at DESC").
		Offset((f.Page - 1) * f.Limit).
		Limit(f.Limit).
		Find(&visitors).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list visitors: %w", err)
	}
	return visitors, total, nil
}

// Delete removes the visitor, its visits and their photos.
func (r *VisitorRepository) Delete(ctx context.Context, id string) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("visitor_id = ?", id).Delete(&domain.VisitorPhoto{}).Error; err != nil {
			return fmt.Errorf("delete visitor photos: %w", err)
		}
		if err := tx.Where("visitor_id = ?", id).Delete(&domain.Visit{}).Error; err != nil {
			return fmt.Errorf("delete visitor visits: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&domain.Visitor{})
		if res.Error != nil {
			return fmt.Errorf("delete visitor: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrVisitorNotFound
		}
		return nil
	})
}
