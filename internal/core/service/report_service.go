package service

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/thorsignia/visitor-system/internal/core/domain"
	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const (
	exportTimeLayout    = "2006-01-02 15:04:05"
	defaultExportFormat = "xlsx"
	notAvailable        = "N/A"
	recentVisitsLimit   = 10
)

// ReportService serves visit history, exports and the dashboard summary.
type ReportService struct {
	visits   ports.VisitRepository
	media    ports.MediaStore
	encoders map[string]ports.ExportEncoder
	log      zerolog.Logger
	now      func() time.Time
}

func NewReportService(visits ports.VisitRepository, media ports.MediaStore, encoders []ports.ExportEncoder, log zerolog.Logger) *ReportService {
	byFormat := make(map[string]ports.ExportEncoder, len(encoders))
	for _, enc := range encoders {
		byFormat[enc.Format()] = enc
	}
	return &ReportService{
		visits:   visits,
		media:    media,
		encoders: byFormat,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *ReportService) History(ctx context.Context, filter ports.HistoryFilter) ([]domain.Visit, error) {
	visits, err := s.visits.History(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("visit history: %w", err)
	}
	return visits, nil
}

// Export renders the filtered history in the requested format, xlsx when format is empty.
func (s *ReportService) Export(ctx context.Context, filter ports.HistoryFilter, format, baseURL string) (*ports.ExportFile, error) {
	if format == "" {
		format = defaultExportFormat
	}
	enc, ok := s.encoders[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedExportFormat, format)
	}

	visits, err := s.History(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	rows := make([]ports.ExportRow, 0, len(visits))
	for i := range visits {
		rows = append(rows, s.exportRow(&visits[i], baseURL))
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, rows); err != nil {
		return nil, fmt.Errorf("export: encode %s: %w", enc.Format(), err)
	}

	s.log.Info().Str("format", enc.Format()).Int("rows", len(rows)).Msg("visit history exported")
	return &ports.ExportFile{
		Filename:    fmt.Sprintf("visit_history_%s.%s", s.now().Format("20060102_150405"), enc.Extension()),
		Format:      enc.Format(),
		ContentType: enc.ContentType(),
		Data:        buf.Bytes(),
		Count:       len(rows),
	}, nil
}

func (s *ReportService) Dashboard(ctx context.Context, now time.Time) (*ports.DashboardSummary, error) {
	active, err := s.visits.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.visits.CountCheckInsSince(ctx, midnight)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	recent, _, err := s.visits.List(ctx, ports.VisitFilter{Page: 1, Limit: recentVisitsLimit})
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	return &ports.DashboardSummary{Active: active, CheckInsToday: today, RecentVisits: recent}, nil
}

func (s *ReportService) exportRow(v *domain.Visit, baseURL string) ports.ExportRow {
	visitor := domain.Visitor{ID: v.VisitorID}
	if v.Visitor != nil {
		visitor = *v.Visitor
	}

	host := v.HostName
	if host == "" {
		host = notAvailable
	}
	checkOut := notAvailable
	if v.CheckOutTime != nil {
		checkOut = v.CheckOutTime.Format(exportTimeLayout)
	}
	duration := notAvailable
	if v.DurationMinutes != nil {
		duration = strconv.Itoa(*v.DurationMinutes)
	}
	active := "No"
	if v.IsActive() {
		active = "Yes"
	}
	photoURL := notAvailable
	if p := v.FirstPhoto(); p != nil {
		photoURL = strings.TrimRight(baseURL, "/") + s.media.URL(p.Image)
	}

	return ports.ExportRow{
		visitor.ID,
		visitor.Name,
		visitor.Email,
		visitor.Phone,
		v.Purpose,
		host,
		v.Status(),
		v.ID,
		v.CheckInTime.Format(exportTimeLayout),
		checkOut,
		duration,
		v.DurationFormatted(),
		active,
		photoURL,
		visitor.CreatedAt.Format(exportTimeLayout),
		visitor.UpdatedAt.Format(exportTimeLayout),
		v.CheckInTime.Format(exportTimeLayout),
	}
}
