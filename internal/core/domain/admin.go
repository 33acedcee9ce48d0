package domain

import (
	"errors"
	"time"
)

var ErrAdminNotFound = errors.New("admin not found")
var ErrAdminExists = errors.New("admin already exists")
var ErrInvalidCredentials = errors.New("invalid email or password")
var ErrTooManyAttempts = errors.New("too many login attempts, try again later")
var ErrSessionInvalid = errors.New("session is not valid")

// AdminActor is the single administrator role allowed into the dashboard.
type AdminActor struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:254;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null"`
	LastLogin    *time.Time
	CreatedAt    time.Time
}

func (AdminActor) TableName() string { return "custom_admins" }
