package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	StatusCheckedIn  = "Checked In"
	StatusCheckedOut = "Checked Out"
)

var ErrVisitNotFound = errors.New("visit not found")
var ErrVisitAlreadyClosed = errors.New("visitor has already been checked out")

// SignatureKind discriminates how Visit.SignatureData must be read.
type SignatureKind string

const (
	SignatureNone   SignatureKind = ""
	SignatureVector SignatureKind = "vector"
	SignatureImage  SignatureKind = "image"
	SignatureRaw    SignatureKind = "raw"
)

// Signature is the payload captured on the visitor's signature pad.
type Signature struct {
	Kind  SignatureKind
	Data  string
	Image string // media path of the rasterised signature, if any
}

// Visit is one check-in to check-out episode of a Visitor.
// CheckOutTime is nil while the visit is active; DurationMinutes is set together with it.
type Visit struct {
	ID              string     `gorm:"type:varchar(36);primaryKey"`
	VisitorID       string     `gorm:"type:varchar(36);not null;index"`
	Visitor         *Visitor   `gorm:"foreignKey:VisitorID;constraint:OnDelete:CASCADE"`
	Purpose         string     `gorm:"type:text;not null"`
	HostName        string     `gorm:"size:200"`
	CheckInTime     time.Time  `gorm:"not null;index"`
	CheckOutTime    *time.Time `gorm:"index"`
	DurationMinutes *int
	SignatureData   string         `gorm:"type:text"`
	SignatureType   SignatureKind  `gorm:"size:16"`
	SignatureImage  string         `gorm:"size:255"`
	Photos          []VisitorPhoto `gorm:"foreignKey:VisitID"`
}

// NewVisit opens an active visit for visitor.
func NewVisit(visitor *Visitor, purpose, hostName string, now time.Time) *Visit {
	return &Visit{
		ID:          uuid.NewString(),
		VisitorID:   visitor.ID,
		Visitor:     visitor,
		Purpose:     purpose,
		HostName:    hostName,
		CheckInTime: now,
	}
}

// IsActive reports whether the visitor is still on the premises.
func (v *Visit) IsActive() bool {
	return v.CheckOutTime == nil
}

// Status returns the human label shown in lists and exports.
func (v *Visit) Status() string {
	if v.IsActive() {
		return StatusCheckedIn
	}
	return StatusCheckedOut
}

// Close records the check-out. A visit can only be closed once.
func (v *Visit) Close(at time.Time) error {
	if !v.IsActive() {
		return ErrVisitAlreadyClosed
	}
	d := DurationMinutes(v.CheckInTime, at)
	v.CheckOutTime = &at
	v.DurationMinutes = &d
	return nil
}

// DurationFormatted renders the stay as "2h 5m" or "45m", and "N/A" while active.
func (v *Visit) DurationFormatted() string {
	if v.DurationMinutes == nil {
		return "N/A"
	}
	hours := *v.DurationMinutes / 60
	minutes := *v.DurationMinutes % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// FirstPhoto returns the representative photo of the visit.
func (v *Visit) FirstPhoto() *VisitorPhoto {
	if len(v.Photos) == 0 {
		return nil
	}
	return &v.Photos[0]
}

// ApplySignature stores a captured signature on the visit.
func (v *Visit) ApplySignature(sig Signature) {
	v.SignatureType = sig.Kind
	v.SignatureData = sig.Data
	v.SignatureImage = sig.Image
}

// DurationMinutes is the whole number of minutes between in and out, floored and never negative.
func DurationMinutes(in, out time.Time) int {
	d := int(out.Sub(in) / time.Minute)
	if d < 0 {
		return 0
	}
	return d
}
