package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

type recordingEncoder struct {
	rows []ports.ExportRow
}

func (e *recordingEncoder) Format() string      { return "csv" }
func (e *recordingEncoder) Extension() string   { return "csv" }
func (e *recordingEncoder) ContentType() string { return "text/csv" }

func (e *recordingEncoder) Encode(w io.Writer, rows []ports.ExportRow) error {
	e.rows = rows
	_, err := io.WriteString(w, "ok")
	return err
}

func TestReportService_ExportRows(t *testing.T) {
	visitors := newStubVisitorRepo()
	visits := newStubVisitRepo(visitors)
	photos := &stubPhotoRepo{visits: visits}
	enc := &recordingEncoder{}
	svc := NewReportService(visits, newStubMedia(), []ports.ExportEncoder{enc}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC) }
	ctx := context.Background()

	in := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	ana := seedVisitor(t, visitors, "Ana", "ana@example.com", "555-0100")
	closed := domain.NewVisit(ana, "Interview", "Maria", in)
	if err := closed.Close(in.Add(65 * time.Minute)); err != nil {
		t.Fatalf("Close: %v", err)
	}
	open := domain.NewVisit(ana, "Pickup", "", in.Add(2*time.Hour))
	for _, v := range []*domain.Visit{closed, open} {
		if err := visits.Create(ctx, v); err != nil {
			t.Fatalf("seed visit: %v", err)
		}
	}
	if err := photos.Create(ctx, domain.NewVisitorPhoto(closed, "visitor_photos/a.png", in)); err != nil {
		t.Fatalf("seed photo: %v", err)
	}

	file, err := svc.Export(ctx, ports.HistoryFilter{}, "CSV", "https://visitors.example.com/")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if file.Filename != "visit_history_20240502_103000.csv" || file.Count != 2 || string(file.Data) != "ok" {
		t.Fatalf("unexpected export file %+v", file)
	}
	if len(enc.rows) != 2 {
		t.Fatalf("want 2 rows, got %d", len(enc.rows))
	}

	openRow, closedRow := enc.rows[0], enc.rows[1]
	if openRow[5] != "N/A" || openRow[9] != "N/A" || openRow[10] != "N/A" || openRow[12] != "Yes" || openRow[13] != "N/A" {
		t.Fatalf("unexpected open row %v", openRow)
	}
	if openRow[6] != domain.StatusCheckedIn {
		t.Fatalf("open row status = %q", openRow[6])
	}
	want := map[int]string{
		1:  "Ana",
		5:  "Maria",
		6:  domain.StatusCheckedOut,
		8:  "2024-05-01 09:00:00",
		9:  "2024-05-01 10:05:00",
		10: "65",
		11: "1h 5m",
		12: "No",
		13: "https://visitors.example.com/media/visitor_photos/a.png",
	}
	for col, v := range want {
		if closedRow[col] != v {
			t.Errorf("%s = %q, want %q", ports.ExportHeaders[col], closedRow[col], v)
		}
	}
}

func TestReportService_UnsupportedFormat(t *testing.T) {
	visitors := newStubVisitorRepo()
	svc := NewReportService(newStubVisitRepo(visitors), newStubMedia(), []ports.ExportEncoder{&recordingEncoder{}}, zerolog.Nop())

	_, err := svc.Export(context.Background(), ports.HistoryFilter{}, "pdf", "")
	if !errors.Is(err, domain.ErrUnsupportedExportFormat) {
		t.Fatalf("got %v, want ErrUnsupportedExportFormat", err)
	}
	if !strings.Contains(err.Error(), "pdf") {
		t.Fatalf("error should name the format: %v", err)
	}
}

func TestReportService_Dashboard(t *testing.T) {
	visitors := newStubVisitorRepo()
	visits := newStubVisitRepo(visitors)
	svc := NewReportService(visits, newStubMedia(), nil, zerolog.Nop())
	ctx := context.Background()

	now := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	ana := seedVisitor(t, visitors, "Ana", "ana@example.com", "555-0100")
	yesterday := domain.NewVisit(ana, "a", "", now.Add(-24*time.Hour))
	today := domain.NewVisit(ana, "b", "", now.Add(-time.Hour))
	for _, v := range []*domain.Visit{yesterday, today} {
		if err := visits.Create(ctx, v); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	sum, err := svc.Dashboard(ctx, now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if sum.CheckInsToday != 1 || len(sum.Active) != 2 || len(sum.RecentVisits) != 2 {
		t.Fatalf("unexpected summary: today=%d active=%d recent=%d", sum.CheckInsToday, len(sum.Active), len(sum.RecentVisits))
	}
}
