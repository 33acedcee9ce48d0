package ports

import (
	"context"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// Upload is a file received from a multipart form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SignatureInput carries whichever signature form the client submitted.
type SignatureInput struct {
	File   *Upload
	Data   string
	Vector bool // client flagged Data as vector paths
}

func (s SignatureInput) Empty() bool {
	return s.File == nil && s.Data == ""
}

// PhotoInput carries an uploaded photo or a "<mime>;base64,<payload>" string.
type PhotoInput struct {
	File    *Upload
	DataURL string
}

func (p PhotoInput) Empty() bool {
	return p.File == nil && p.DataURL == ""
}

// CheckInInput is the DTO passed from the transport layer to CheckInService.
type CheckInInput struct {
	Name      string
	Email     string
	Phone     string
	Purpose   string
	HostName  string
	Photo     PhotoInput
	Signature SignatureInput
}

type AttachmentKind string

const (
	AttachmentPhoto     AttachmentKind = "photo"
	AttachmentSignature AttachmentKind = "signature"
)

// AttachmentResult reports the outcome of one best-effort attachment step.
type AttachmentResult struct {
	Kind   AttachmentKind
	Stored bool
	Err    error
}

// CheckInResult is returned after a successful check-in.
type CheckInResult struct {
	Visit       *domain.Visit
	Resolution  domain.Resolution
	Attachments []AttachmentResult
}

// ReturningVisitor reports whether the visitor was already on record.
func (r *CheckInResult) ReturningVisitor() bool {
	return r.Resolution.Existed()
}

type CheckInService interface {
	CheckIn(ctx context.Context, in CheckInInput) (*CheckInResult, error)
	CheckOut(ctx context.Context, visitID string) (*domain.Visit, error)
	ListActive(ctx context.Context) ([]domain.Visit, error)
	AttachPhoto(ctx context.Context, visitID string, in PhotoInput) (*domain.Visit, error)
	AttachSignature(ctx context.Context, visitID string, in SignatureInput) (*domain.Visit, error)
}
