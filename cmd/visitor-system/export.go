package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/thorsignia/visitor-system/internal/core/ports"
	"github.com/thorsignia/visitor-system/internal/core/service"
	"github.com/thorsignia/visitor-system/internal/infrastructure/db/gormstore"
	"github.com/thorsignia/visitor-system/internal/infrastructure/export"
	"github.com/thorsignia/visitor-system/internal/infrastructure/media"
)

func exportCmd(a *app) *cobra.Command {
	var (
		format, outDir     string
		name, email, phone string
		dateFrom, dateTo   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the visit history to a file",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := ports.HistoryFilter{Name: name, Email: email, Phone: phone}
			var err error
			if filter.DateFrom, err = parseDay(dateFrom); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if filter.DateTo, err = parseDay(dateTo); err != nil {
				return fmt.Errorf("--to: %w", err)
			}

			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer gormstore.Close(db)

			store := media.NewLocalStore(a.cfg.Media.Root, a.cfg.Media.URL)
			reports := service.NewReportService(gormstore.NewVisitRepository(db), store, export.Encoders(), a.log)
			file, err := reports.Export(cmd.Context(), filter, format, a.cfg.PublicBaseURL)
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, file.Filename)
			if err := os.WriteFile(path, file.Data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d visits to %s\n", file.Count, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "xlsx", "Output format: "+strings.Join(export.Formats(), ", "))
	cmd.Flags().StringVar(&outDir, "out", ".", "Directory to write the file to")
	cmd.Flags().StringVar(&name, "name", "", "Visitor name contains")
	cmd.Flags().StringVar(&email, "email", "", "Visitor email contains")
	cmd.Flags().StringVar(&phone, "phone", "", "Visitor phone contains")
	cmd.Flags().StringVar(&dateFrom, "from", "", "First check-in day (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateTo, "to", "", "Last check-in day (YYYY-MM-DD)")
	return cmd
}

func parseDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
