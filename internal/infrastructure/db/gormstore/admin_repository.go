package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.AdminActor, error) {
	var a domain.AdminActor
	if err := conn(ctx, r.db).Where("email = ? AND is_active = ?", email, true).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}
	return &a, nil
}

func (r *AdminRepository) Create(ctx context.Context, a *domain.AdminActor) error {
	if err := conn(ctx, r.db).Create(a).Error; err != nil {
		if isDuplicate(err) {
			return domain.ErrAdminExists
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	err := conn(ctx, r.db).Model(&domain.AdminActor{}).Where("id = ?", id).Update("last_login", at).Error
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
