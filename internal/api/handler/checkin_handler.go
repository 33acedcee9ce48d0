package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/api/metrics"
	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// CheckInHandler serves the front-desk check-in and check-out endpoints.
type CheckInHandler struct {
	service ports.CheckInService
	links   Linker
}

func NewCheckInHandler(service ports.CheckInService, links Linker) *CheckInHandler {
	return &CheckInHandler{service: service, links: links}
}

// CheckIn handles POST /api/visitors/check_in.
//
// @Summary      Check a visitor in
// @Description  Matches an existing visitor by email, then phone, or creates one, and opens a visit.
// @Description  Photo and signature are optional; a failed attachment is reported but keeps the visit.
// @Tags         check-in
// @Accept       json,mpfd
// @Produce      json
// @Param        body  body      checkInRequest  true  "Visitor and visit details"
// @Success      201   {object}  checkInResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /visitors/check_in [post]
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	var req checkInRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	photo, err := formUpload(c, "photo")
	if err != nil {
		return err
	}
	signature, err := formUpload(c, "signature_image")
	if err != nil {
		return err
	}

	result, err := h.service.CheckIn(c.Request().Context(), toCheckInInput(req, photo, signature))
	if err != nil {
		return err
	}

	metrics.CheckInsTotal.WithLabelValues(result.Resolution.String()).Inc()
	for _, a := range result.Attachments {
		if !a.Stored {
			metrics.AttachmentFailuresTotal.WithLabelValues(string(a.Kind)).Inc()
		}
	}

	return c.JSON(http.StatusCreated, checkInResponse{
		Message:            "Visitor checked in successfully",
		Visit:              h.links.visit(c, result.Visit),
		IsReturningVisitor: result.ReturningVisitor(),
		Resolution:         result.Resolution.String(),
		Attachments:        toAttachments(result.Attachments),
	})
}

// CheckOut handles POST /api/visitors/check_out.
//
// @Summary      Check a visitor out
// @Tags         check-in
// @Accept       json
// @Produce      json
// @Param        body  body      checkOutRequest  true  "Visit to close"
// @Success      200   {object}  visitMessageResponse
// @Failure      400   {object}  errorResponse  "invalid id or visit already checked out"
// @Failure      404   {object}  errorResponse
// @Router       /visitors/check_out [post]
func (h *CheckInHandler) CheckOut(c echo.Context) error {
	var req checkOutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visit, err := h.service.CheckOut(c.Request().Context(), req.VisitID)
	if err != nil {
		metrics.CheckOutsTotal.WithLabelValues(checkOutResult(err)).Inc()
		return err
	}
	metrics.CheckOutsTotal.WithLabelValues("ok").Inc()
	if visit.DurationMinutes != nil {
		metrics.VisitDurationMinutes.Observe(float64(*visit.DurationMinutes))
	}

	return c.JSON(http.StatusOK, visitMessageResponse{
		Message: "Visitor checked out successfully",
		Visit:   h.links.visit(c, visit),
	})
}

// Active handles GET /api/visitors/active.
//
// @Summary      List visitors currently on site
// @Tags         check-in
// @Produce      json
// @Success      200  {object}  visitListResponse
// @Failure      500  {object}  errorResponse
// @Router       /visitors/active [get]
func (h *CheckInHandler) Active(c echo.Context) error {
	visits, err := h.service.ListActive(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, visitListResponse{
		Count:  len(visits),
		Visits: h.links.visits(c, visits),
	})
}

// AttachPhoto handles POST /api/visits/:id/photos.
//
// @Summary      Add a photo to a visit
// @Tags         visits
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      string        true  "Visit ID"
// @Param        body  body      photoRequest  false  "photo_data data URL (or multipart part \"photo\")"
// @Success      201   {object}  visitResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /visits/{id}/photos [post]
func (h *CheckInHandler) AttachPhoto(c echo.Context) error {
	var req photoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	file, err := formUpload(c, "photo")
	if err != nil {
		return err
	}

	visit, err := h.service.AttachPhoto(c.Request().Context(), c.Param("id"), toPhotoInput(req.PhotoData, req.Photo, file))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImageData) {
			metrics.AttachmentFailuresTotal.WithLabelValues(string(ports.AttachmentPhoto)).Inc()
		}
		return err
	}
	return c.JSON(http.StatusCreated, h.links.visit(c, visit))
}

// AttachSignature handles POST /api/visits/:id/signature.
//
// @Summary      Set the signature of a visit
// @Tags         visits
// @Accept       json,mpfd
// @Produce      json
// @Param        id    path      string            true  "Visit ID"
// @Param        body  body      signatureRequest  false  "signature_data (or multipart part \"signature_image\")"
// @Success      200   {object}  visitResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /visits/{id}/signature [post]
func (h *CheckInHandler) AttachSignature(c echo.Context) error {
	var req signatureRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	file, err := formUpload(c, "signature_image")
	if err != nil {
		return err
	}

	visit, err := h.service.AttachSignature(c.Request().Context(), c.Param("id"), ports.SignatureInput{
		File:   file,
		Data:   req.SignatureData,
		Vector: bool(req.IsVectorSignature),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidImageData) {
			metrics.AttachmentFailuresTotal.WithLabelValues(string(ports.AttachmentSignature)).Inc()
		}
		return err
	}
	return c.JSON(http.StatusOK, h.links.visit(c, visit))
}

func checkOutResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrVisitAlreadyClosed):
		return "already_closed"
	case errors.Is(err, domain.ErrVisitNotFound):
		return "not_found"
	default:
		return "error"
	}
}
