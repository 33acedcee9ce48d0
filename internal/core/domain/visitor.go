package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrVisitorNotFound = errors.New("visitor not found")
var ErrVisitorConflict = errors.New("a visitor with this email or phone already exists")
var ErrSearchCriteriaRequired = errors.New("please provide email or phone number")

// Visitor is a person identified by a unique email and a unique phone number.
type Visitor struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Name      string    `gorm:"size:200;not null"`
	Email     string    `gorm:"size:254;not null;uniqueIndex"`
	Phone     string    `gorm:"size:20;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;index"`
	UpdatedAt time.Time `gorm:"not null"`
}

// NewVisitor returns an unsaved Visitor with a fresh identifier.
func NewVisitor(name, email, phone string, now time.Time) *Visitor {
	return &Visitor{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Phone:     phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Overwrite replaces the contact details with the ones supplied on the latest check-in.
func (v *Visitor) Overwrite(name, email, phone string, now time.Time) {
	v.Name = name
	v.Email = email
	v.Phone = phone
	v.UpdatedAt = now
}

// Resolution tells how a check-in was matched to a Visitor.
type Resolution int

const (
	ResolutionCreated Resolution = iota
	ResolutionMatchedByEmail
	ResolutionMatchedByPhone
)

func (r Resolution) String() string {
	switch r {
	case ResolutionMatchedByEmail:
		return "matched_by_email"
	case ResolutionMatchedByPhone:
		return "matched_by_phone"
	default:
		return "created"
	}
}

// Existed reports whether the visitor was already on record before the check-in.
func (r Resolution) Existed() bool {
	return r != ResolutionCreated
}
