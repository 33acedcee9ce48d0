package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const (
	maxUploadBytes = 10 << 20
	dateLayout     = "2006-01-02"
)

// Linker turns stored media paths into absolute URLs. When no public base URL
// is configured the scheme and host of the current request are used.
type Linker struct {
	publicBase string
	media      ports.MediaStore
}

func NewLinker(publicBaseURL string, media ports.MediaStore) Linker {
	return Linker{publicBase: strings.TrimRight(publicBaseURL, "/"), media: media}
}

func (l Linker) base(c echo.Context) string {
	if l.publicBase != "" {
		return l.publicBase
	}
	return c.Scheme() + "://" + c.Request().Host
}

func (l Linker) mediaURL(c echo.Context, path string) string {
	if path == "" {
		return ""
	}
	return l.base(c) + l.media.URL(path)
}

// formUpload reads the multipart file part named field. It returns nil when
// the request is not multipart or carries no such part.
func formUpload(c echo.Context, field string) (*ports.Upload, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return nil, nil
	}
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid multipart form")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", field, err)
	}
	if len(data) > maxUploadBytes {
		return nil, fieldErr(field, fmt.Sprintf("%s must be at most %d MB", field, maxUploadBytes>>20))
	}
	return &ports.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Data:        data,
	}, nil
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c echo.Context, name string) (*time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return nil, fieldErr(name, name+" must be a date in YYYY-MM-DD format")
	}
	return &t, nil
}

// queryInt parses an optional integer query parameter; malformed values yield 0
// so the service falls back to its default.
func queryInt(c echo.Context, name string) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return 0
	}
	return n
}

func historyFilter(c echo.Context) (ports.HistoryFilter, error) {
	from, err := queryDate(c, "date_from")
	if err != nil {
		return ports.HistoryFilter{}, err
	}
	to, err := queryDate(c, "date_to")
	if err != nil {
		return ports.HistoryFilter{}, err
	}
	return ports.HistoryFilter{
		Name:     strings.TrimSpace(c.QueryParam("name")),
		Phone:    strings.TrimSpace(c.QueryParam("phone")),
		Email:    strings.TrimSpace(c.QueryParam("email")),
		DateFrom: from,
		DateTo:   to,
	}, nil
}

// pageLink returns the absolute URL of the current request with page replaced,
// or nil when page is out of range.
func pageLink(c echo.Context, l Linker, page, limit int, total int64) *string {
	if page < 1 || int64(page-1)*int64(limit) >= total {
		return nil
	}
	q := c.Request().URL.Query()
	q.Set("page", strconv.Itoa(page))
	u := url.URL{Path: c.Request().URL.Path, RawQuery: q.Encode()}
	link := l.base(c) + u.String()
	return &link
}

func newPage[T any](c echo.Context, l Linker, items []T, total int64, page, limit int) pageResponse[T] {
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{
		Count:    total,
		Next:     pageLink(c, l, page+1, limit, total),
		Previous: pageLink(c, l, page-1, limit, total),
		Results:  items,
	}
}
