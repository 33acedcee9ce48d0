package handler

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// flexBool accepts true/false as JSON booleans or as strings ("true", "1", "on"),
// which is how browsers and multipart clients send checkboxes.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = flexBool(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return b.UnmarshalParam(s)
}

// UnmarshalParam satisfies echo.BindUnmarshaler for form and query values.
func (b *flexBool) UnmarshalParam(param string) error {
	switch strings.ToLower(strings.TrimSpace(param)) {
	case "", "off":
		*b = false
		return nil
	case "on", "yes":
		*b = true
		return nil
	}
	v, err := strconv.ParseBool(param)
	if err != nil {
		return err
	}
	*b = flexBool(v)
	return nil
}

// --- Requests ---

// checkInRequest is accepted as JSON or multipart form. Photo and signature
// files arrive as the multipart parts "photo" and "signature_image".
type checkInRequest struct {
	Name              string   `json:"name"                form:"name"                validate:"required,max=200"`
	Email             string   `json:"email"               form:"email"               validate:"required,email,max=254"`
	Phone             string   `json:"phone"               form:"phone"               validate:"required,max=20"`
	Purpose           string   `json:"purpose"             form:"purpose"             validate:"required"`
	HostName          string   `json:"host_name"           form:"host_name"           validate:"max=200"`
	PhotoData         string   `json:"photo_data"          form:"photo_data"`
	Photo             string   `json:"photo"               form:"photo"`
	SignatureData     string   `json:"signature_data"      form:"signature_data"`
	IsVectorSignature flexBool `json:"is_vector_signature" form:"is_vector_signature"`
}

type checkOutRequest struct {
	VisitID string `json:"visit_id" form:"visit_id" validate:"required,uuid"`
}

type photoRequest struct {
	PhotoData string `json:"photo_data" form:"photo_data"`
	Photo     string `json:"photo"      form:"photo"`
}

type signatureRequest struct {
	SignatureData     string   `json:"signature_data"      form:"signature_data"`
	IsVectorSignature flexBool `json:"is_vector_signature" form:"is_vector_signature"`
}

type visitorRequest struct {
	Name  string `json:"name"  validate:"required,max=200"`
	Email string `json:"email" validate:"required,email,max=254"`
	Phone string `json:"phone" validate:"required,max=20"`
}

type createVisitRequest struct {
	Visitor  string `json:"visitor"   validate:"required,uuid"`
	Purpose  string `json:"purpose"   validate:"required"`
	HostName string `json:"host_name" validate:"max=200"`
}

type updateVisitRequest struct {
	Purpose  string `json:"purpose"   validate:"required"`
	HostName string `json:"host_name" validate:"max=200"`
}

// --- Responses ---

type visitorSummaryResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type photoResponse struct {
	ID        string    `json:"id"`
	Image     string    `json:"image"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type visitResponse struct {
	ID                string                  `json:"id"`
	VisitorID         string                  `json:"visitor_id"`
	Visitor           *visitorSummaryResponse `json:"visitor,omitempty"`
	VisitorName       string                  `json:"visitor_name"`
	VisitorEmail      string                  `json:"visitor_email"`
	VisitorPhone      string                  `json:"visitor_phone"`
	Purpose           string                  `json:"purpose"`
	HostName          string                  `json:"host_name"`
	CheckInTime       time.Time               `json:"check_in_time"`
	CheckOutTime      *time.Time              `json:"check_out_time"`
	DurationMinutes   *int                    `json:"duration_minutes"`
	DurationFormatted string                  `json:"duration_formatted"`
	IsActive          bool                    `json:"is_active"`
	Status            string                  `json:"status"`
	SignatureType     string                  `json:"signature_type,omitempty"`
	SignatureData     string                  `json:"signature_data,omitempty"`
	SignatureURL      string                  `json:"signature_url,omitempty"`
	Photos            []photoResponse         `json:"photos"`
}

type visitorResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       string         `json:"phone"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	TotalVisits int64          `json:"total_visits"`
	LastVisit   *time.Time     `json:"last_visit"`
	ActiveVisit *visitResponse `json:"active_visit"`
}

type attachmentResponse struct {
	Kind   string `json:"kind"`
	Stored bool   `json:"stored"`
	Error  string `json:"error,omitempty"`
}

type checkInResponse struct {
	Message            string               `json:"message"`
	Visit              visitResponse        `json:"visit"`
	IsReturningVisitor bool                 `json:"is_returning_visitor"`
	Resolution         string               `json:"resolution"`
	Attachments        []attachmentResponse `json:"attachments"`
}

type visitMessageResponse struct {
	Message string        `json:"message"`
	Visit   visitResponse `json:"visit"`
}

type visitListResponse struct {
	Count  int             `json:"count"`
	Visits []visitResponse `json:"visits"`
}

type searchResponse struct {
	Found   bool             `json:"found"`
	Message string           `json:"message,omitempty"`
	Visitor *visitorResponse `json:"visitor,omitempty"`
}

type exportResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	Data     string `json:"data"`
	Count    int    `json:"count"`
}

// pageResponse is the paginated list envelope: count is the total number of
// matching rows, next and previous are absolute links or null.
type pageResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
