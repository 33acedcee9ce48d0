package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidImageData = errors.New("invalid image data format")
var ErrPhotoVisitorMismatch = errors.New("photo visitor does not own the visit")

// VisitorPhoto is an image captured for a visit. Image is a path relative to the media root.
type VisitorPhoto struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	VisitorID string    `gorm:"type:varchar(36);not null;index"`
	Visitor   *Visitor  `gorm:"foreignKey:VisitorID;constraint:OnDelete:CASCADE"`
	VisitID   string    `gorm:"type:varchar(36);not null;index"`
	Visit     *Visit    `gorm:"foreignKey:VisitID;constraint:OnDelete:CASCADE"`
	Image     string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// NewVisitorPhoto attaches image to visit. The visitor reference is taken from the visit
// so both references always agree.
func NewVisitorPhoto(visit *Visit, image string, now time.Time) *VisitorPhoto {
	return &VisitorPhoto{
		ID:        uuid.NewString(),
		VisitorID: visit.VisitorID,
		VisitID:   visit.ID,
		Image:     image,
		CreatedAt: now,
	}
}
