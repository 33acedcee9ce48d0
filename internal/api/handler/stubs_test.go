package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

func newTestContext(t *testing.T, method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	e.Renderer = renderer

	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonBody(s string) io.Reader { return strings.NewReader(s) }

type stubMedia struct{}

func (stubMedia) Save(context.Context, string, string, []byte) (string, error) { return "", nil }
func (stubMedia) URL(p string) string                                          { return "/media/" + p }

var testLinks = NewLinker("http://visitors.test", stubMedia{})

func sampleVisit() *domain.Visit {
	visitor := &domain.Visitor{ID: "11111111-1111-1111-1111-111111111111", Name: "Ada", Email: "ada@x.com", Phone: "555"}
	return &domain.Visit{
		ID:          "22222222-2222-2222-2222-222222222222",
		VisitorID:   visitor.ID,
		Visitor:     visitor,
		Purpose:     "Meeting",
		CheckInTime: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC),
		Photos: []domain.VisitorPhoto{
			{ID: "p1", Image: "visitor_photos/a.png", CreatedAt: time.Date(2024, 1, 10, 9, 0, 1, 0, time.UTC)},
		},
	}
}

// --- CheckInService ---

type stubCheckInService struct {
	checkInFn         func(ctx context.Context, in ports.CheckInInput) (*ports.CheckInResult, error)
	checkOutFn        func(ctx context.Context, id string) (*domain.Visit, error)
	listActiveFn      func(ctx context.Context) ([]domain.Visit, error)
	attachPhotoFn     func(ctx context.Context, id string, in ports.PhotoInput) (*domain.Visit, error)
	attachSignatureFn func(ctx context.Context, id string, in ports.SignatureInput) (*domain.Visit, error)
}

func (s *stubCheckInService) CheckIn(ctx context.Context, in ports.CheckInInput) (*ports.CheckInResult, error) {
	return s.checkInFn(ctx, in)
}

func (s *stubCheckInService) CheckOut(ctx context.Context, id string) (*domain.Visit, error) {
	return s.checkOutFn(ctx, id)
}

func (s *stubCheckInService) ListActive(ctx context.Context) ([]domain.Visit, error) {
	return s.listActiveFn(ctx)
}

func (s *stubCheckInService) AttachPhoto(ctx context.Context, id string, in ports.PhotoInput) (*domain.Visit, error) {
	return s.attachPhotoFn(ctx, id, in)
}

func (s *stubCheckInService) AttachSignature(ctx context.Context, id string, in ports.SignatureInput) (*domain.Visit, error) {
	return s.attachSignatureFn(ctx, id, in)
}

// --- VisitorService ---

type stubVisitorService struct {
	searchFn func(ctx context.Context, email, phone string) (*ports.VisitorDetail, error)
	listFn   func(ctx context.Context, f ports.VisitorFilter) (*ports.VisitorPage, error)
}

func (s *stubVisitorService) Search(ctx context.Context, email, phone string) (*ports.VisitorDetail, error) {
	return s.searchFn(ctx, email, phone)
}

func (s *stubVisitorService) Get(context.Context, string) (*ports.VisitorDetail, error) {
	return nil, domain.ErrVisitorNotFound
}

func (s *stubVisitorService) List(ctx context.Context, f ports.VisitorFilter) (*ports.VisitorPage, error) {
	return s.listFn(ctx, f)
}

func (s *stubVisitorService) Create(context.Context, ports.VisitorInput) (*ports.VisitorDetail, error) {
	return nil, domain.ErrVisitorConflict
}

func (s *stubVisitorService) Update(context.Context, string, ports.VisitorInput) (*ports.VisitorDetail, error) {
	return nil, domain.ErrVisitorNotFound
}

func (s *stubVisitorService) Delete(context.Context, string) error { return nil }

// --- ReportService ---

type stubReportService struct {
	historyFn   func(ctx context.Context, f ports.HistoryFilter) ([]domain.Visit, error)
	exportFn    func(ctx context.Context, f ports.HistoryFilter, format, baseURL string) (*ports.ExportFile, error)
	dashboardFn func(ctx context.Context, now time.Time) (*ports.DashboardSummary, error)
}

func (s *stubReportService) History(ctx context.Context, f ports.HistoryFilter) ([]domain.Visit, error) {
	return s.historyFn(ctx, f)
}

func (s *stubReportService) Export(ctx context.Context, f ports.HistoryFilter, format, baseURL string) (*ports.ExportFile, error) {
	return s.exportFn(ctx, f, format, baseURL)
}

func (s *stubReportService) Dashboard(ctx context.Context, now time.Time) (*ports.DashboardSummary, error) {
	return s.dashboardFn(ctx, now)
}

// --- AdminService ---

type stubAdminService struct {
	loginFn  func(ctx context.Context, email, password string) (*ports.AdminSession, error)
	loggedIn []string
	revoked  []string
}

func (s *stubAdminService) Login(ctx context.Context, email, password string) (*ports.AdminSession, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAdminService) Authenticate(_ context.Context, token string) (string, error) {
	for _, t := range s.loggedIn {
		if t == token {
			return "admin@example.com", nil
		}
	}
	return "", domain.ErrSessionInvalid
}

func (s *stubAdminService) Logout(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return nil
}

func (s *stubAdminService) CreateAdmin(context.Context, string, string) (*domain.AdminActor, error) {
	return nil, domain.ErrAdminExists
}
