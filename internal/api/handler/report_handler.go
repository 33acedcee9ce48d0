package handler

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/api/metrics"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// ReportHandler serves the visit history and its exports.
type ReportHandler struct {
	service ports.ReportService
	links   Linker
}

func NewReportHandler(service ports.ReportService, links Linker) *ReportHandler {
	return &ReportHandler{service: service, links: links}
}

// History handles GET /api/visitors/history.
//
// @Summary      Visit history
// @Description  All filters are optional and combine with AND. Dates are inclusive.
// @Tags         reports
// @Produce      json
// @Param        name       query     string  false  "Visitor name contains (case-insensitive)"
// @Param        phone      query     string  false  "Visitor phone contains"
// @Param        email      query     string  false  "Visitor email contains (case-insensitive)"
// @Param        date_from  query     string  false  "First check-in day, YYYY-MM-DD"
// @Param        date_to    query     string  false  "Last check-in day, YYYY-MM-DD"
// @Success      200        {object}  visitListResponse
// @Failure      400        {object}  errorResponse
// @Router       /visitors/history [get]
func (h *ReportHandler) History(c echo.Context) error {
	filter, err := historyFilter(c)
	if err != nil {
		return err
	}
	visits, err := h.service.History(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, visitListResponse{
		Count:  len(visits),
		Visits: h.links.visits(c, visits),
	})
}

// Export handles GET /api/visitors/export.
//
// @Summary      Export visit history
// @Description  Returns the document base64-encoded in a JSON envelope, or as a file when download=true.
// @Tags         reports
// @Produce      json,octet-stream
// @Param        format     query     string  false  "xlsx (default) or csv"
// @Param        download   query     bool    false  "Send the file as an attachment"
// @Param        name       query     string  false  "Visitor name contains"
// @Param        phone      query     string  false  "Visitor phone contains"
// @Param        email      query     string  false  "Visitor email contains"
// @Param        date_from  query     string  false  "First check-in day, YYYY-MM-DD"
// @Param        date_to    query     string  false  "Last check-in day, YYYY-MM-DD"
// @Success      200        {object}  exportResponse
// @Failure      400        {object}  errorResponse
// @Router       /visitors/export [get]
func (h *ReportHandler) Export(c echo.Context) error {
	filter, err := historyFilter(c)
	if err != nil {
		return err
	}
	var download flexBool
	if err := download.UnmarshalParam(c.QueryParam("download")); err != nil {
		return fieldErr("download", "download must be true or false")
	}

	file, err := h.service.Export(c.Request().Context(), filter, c.QueryParam("format"), h.links.base(c))
	if err != nil {
		return err
	}
	metrics.ExportsTotal.WithLabelValues(file.Format).Inc()

	if download {
		c.Response().Header().Set(echo.HeaderContentDisposition,
			fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", file.Filename, url.PathEscape(file.Filename)))
		c.Response().Header().Set("X-Row-Count", strconv.Itoa(file.Count))
		return c.Blob(http.StatusOK, file.ContentType, file.Data)
	}

	return c.JSON(http.StatusOK, exportResponse{
		Message:  "Visit history exported successfully",
		Filename: file.Filename,
		Format:   file.Format,
		Data:     base64.StdEncoding.EncodeToString(file.Data),
		Count:    file.Count,
	})
}
