package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// VisitorHandler serves visitor search and CRUD.
type VisitorHandler struct {
	service ports.VisitorService
	links   Linker
}

func NewVisitorHandler(service ports.VisitorService, links Linker) *VisitorHandler {
	return &VisitorHandler{service: service, links: links}
}

// Search handles GET /api/visitors/search.
//
// @Summary      Find a returning visitor
// @Description  Looks up by email first, then by phone. At least one of them is required.
// @Tags         visitors
// @Produce      json
// @Param        email  query     string  false  "Email"
// @Param        phone  query     string  false  "Phone number"
// @Success      200    {object}  searchResponse
// @Failure      400    {object}  errorResponse
// @Router       /visitors/search [get]
func (h *VisitorHandler) Search(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	phone := strings.TrimSpace(c.QueryParam("phone"))

	detail, err := h.service.Search(c.Request().Context(), email, phone)
	if errors.Is(err, domain.ErrVisitorNotFound) {
		return c.JSON(http.StatusOK, searchResponse{Found: false, Message: "No existing visitor found"})
	}
	if err != nil {
		return err
	}

	v := h.links.visitor(c, detail)
	return c.JSON(http.StatusOK, searchResponse{Found: true, Visitor: &v})
}

// List handles GET /api/visitors.
//
// @Summary      List visitors
// @Tags         visitors
// @Produce      json
// @Param        search     query     string  false  "Matches name, email or phone"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        page_size  query     int     false  "Page size (default 20, max 100)"
// @Success      200        {object}  pageResponse[visitorResponse]
// @Router       /visitors [get]
func (h *VisitorHandler) List(c echo.Context) error {
	page, err := h.service.List(c.Request().Context(), ports.VisitorFilter{
		Search: strings.TrimSpace(c.QueryParam("search")),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "page_size"),
	})
	if err != nil {
		return err
	}

	items := make([]visitorResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, h.links.visitor(c, &page.Items[i]))
	}
	return c.JSON(http.StatusOK, newPage(c, h.links, items, page.Total, page.Page, page.Limit))
}

// Get handles GET /api/visitors/:id.
//
// @Summary      Get a visitor
// @Tags         visitors
// @Produce      json
// @Param        id   path      string  true  "Visitor ID"
// @Success      200  {object}  visitorResponse
// @Failure      404  {object}  errorResponse
// @Router       /visitors/{id} [get]
func (h *VisitorHandler) Get(c echo.Context) error {
	detail, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.links.visitor(c, detail))
}

// Create handles POST /api/visitors.
//
// @Summary      Create a visitor
// @Tags         visitors
// @Accept       json
// @Produce      json
// @Param        body  body      visitorRequest  true  "Visitor"
// @Success      201   {object}  visitorResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /visitors [post]
func (h *VisitorHandler) Create(c echo.Context) error {
	in, err := bindVisitor(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Create(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, h.links.visitor(c, detail))
}

// Update handles PUT /api/visitors/:id.
//
// @Summary      Update a visitor
// @Tags         visitors
// @Accept       json
// @Produce      json
// @Param        id    path      string          true  "Visitor ID"
// @Param        body  body      visitorRequest  true  "Visitor"
// @Success      200   {object}  visitorResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /visitors/{id} [put]
func (h *VisitorHandler) Update(c echo.Context) error {
	in, err := bindVisitor(c)
	if err != nil {
		return err
	}
	detail, err := h.service.Update(c.Request().Context(), c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, h.links.visitor(c, detail))
}

// Delete handles DELETE /api/visitors/:id. Visits and photos go with the visitor.
//
// @Summary      Delete a visitor
// @Tags         visitors
// @Param        id   path  string  true  "Visitor ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /visitors/{id} [delete]
func (h *VisitorHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func bindVisitor(c echo.Context) (ports.VisitorInput, error) {
	var req visitorRequest
	if err := c.Bind(&req); err != nil {
		return ports.VisitorInput{}, echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return ports.VisitorInput{}, err
	}
	return ports.VisitorInput{Name: req.Name, Email: req.Email, Phone: req.Phone}, nil
}
