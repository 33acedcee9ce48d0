package ports

import (
	"context"
	"io"
	"time"

	"github.com/thorsignia/visitor-system/internal/core/domain"
)

// ExportHeaders is the column order of every visit export.
var ExportHeaders = []string{
	"Visitor ID",
	"Visitor Name",
	"Email",
	"Phone Number",
	"Purpose of Visit",
	"Host Name",
	"Approval Status",
	"Visit ID",
	"Check-in Time",
	"Check-out Time",
	"Duration (minutes)",
	"Duration (formatted)",
	"Is Active",
	"Photo URL",
	"Visitor Created At",
	"Visitor Updated At",
	"Visit Created At",
}

// ExportRow is one visit flattened into export cells, in ExportHeaders order.
type ExportRow [17]string

// ExportEncoder renders export rows into a downloadable file format.
type ExportEncoder interface {
	Format() string
	Extension() string
	ContentType() string
	Encode(w io.Writer, rows []ExportRow) error
}

// ExportFile is a rendered export ready to download.
type ExportFile struct {
	Filename    string
	Format      string
	ContentType string
	Data        []byte
	Count       int
}

// DashboardSummary feeds the admin dashboard.
type DashboardSummary struct {
	Active        []domain.Visit
	CheckInsToday int64
	RecentVisits  []domain.Visit
}

type ReportService interface {
	History(ctx context.Context, filter HistoryFilter) ([]domain.Visit, error)
	// Export renders the filtered history. baseURL makes photo links absolute.
	Export(ctx context.Context, filter HistoryFilter, format, baseURL string) (*ExportFile, error)
	Dashboard(ctx context.Context, now time.Time) (*DashboardSummary, error)
}
