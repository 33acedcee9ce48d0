package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// VisitHandler serves generic visit CRUD. Check-out is only possible through
// CheckInHandler.CheckOut.
type VisitHandler struct {
	service ports.VisitService
	links   Linker
}

func NewVisitHandler(service ports.VisitService, links Linker) *VisitHandler {
	return &VisitHandler{service: service, links: links}
}

// List handles GET /api/visits.
//
// @Summary      List visits
// @Tags         visits
// @Produce      json
// @Param        visitor    query     string  false  "Only visits of this visitor ID"
// @Param        active     query     bool    false  "Only visits without check-out"
// @Param        search     query     string  false  "Matches purpose or visitor name, email, phone"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        page_size  query     int     false  "Page size (default 20, max 100)"
// @Success      200        {object}  pageResponse[visitResponse]
// @Router       /visits [get]
func (h *VisitHandler) List(c echo.Context) error {
	var active flexBool
	if err := active.UnmarshalParam(c.QueryParam("active")); err != nil {
		return fieldErr("active", "active must be true or false")
	}

	page, err := h.service.List(c.Request().Context(), ports.VisitFilter{
		VisitorID:  strings.TrimSpace(c.QueryParam("visitor")),
		ActiveOnly: bool(active),
		Search:     strings.TrimSpace(c.QueryParam("search")),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "page_size"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newPage(c, h.links, h.links.visits(c, page.Items), page.Total, page.Page, page.Limit))
}

// Get handles GET /api/visits/:id.
//
// @Summary      Get a visit
// @Tags         visits
// @Produce      json
// @Param        id   path      string  true  "Visit ID"
// @Success      200  {object}  visitResponse
// @Failure      404  {object}  errorResponse
// @Router       /visits/{id} [get]
func (h *VisitHandler) Get(c echo.Context) error {
	visit, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.links.visit(c, visit))
}

// Create handles POST /api/visits.
//
// @Summary      Open a visit for an existing visitor
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        body  body      createVisitRequest  true  "Visit"
// @Success      201   {object}  visitResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /visits [post]
func (h *VisitHandler) Create(c echo.Context) error {
	var req createVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visit, err := h.service.Create(c.Request().Context(), ports.VisitInput{
		VisitorID: req.Visitor,
		Purpose:   req.Purpose,
		HostName:  req.HostName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.links.visit(c, visit))
}

// Update handles PUT /api/visits/:id. Only purpose and host name are editable.
//
// @Summary      Update a visit
// @Tags         visits
// @Accept       json
// @Produce      json
// @Param        id    path      string              true  "Visit ID"
// @Param        body  body      updateVisitRequest  true  "Editable fields"
// @Success      200   {object}  visitResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /visits/{id} [put]
func (h *VisitHandler) Update(c echo.Context) error {
	var req updateVisitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	visit, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.VisitInput{
		Purpose:  req.Purpose,
		HostName: req.HostName,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.links.visit(c, visit))
}

// Delete handles DELETE /api/visits/:id.
//
// @Summary      Delete a visit
// @Tags         visits
// @Param        id   path  string  true  "Visit ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /visits/{id} [delete]
func (h *VisitHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
