package domain

import "time"

// VisitEventType names an entry of the visit audit trail.
type VisitEventType string

const (
	EventCheckedIn         VisitEventType = "checked_in"
	EventCheckedOut        VisitEventType = "checked_out"
	EventPhotoAttached     VisitEventType = "photo_attached"
	EventSignatureAttached VisitEventType = "signature_attached"
)

// VisitEvent is a lifecycle change of a Visit, recorded for auditing.
type VisitEvent struct {
	Type            VisitEventType
	VisitID         string
	VisitorID       string
	Resolution      string // set on check-in
	DurationMinutes *int   // set on check-out
	OccurredAt      time.Time
}
