package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/thorsignia/visitor-system/internal/core/ports"
)

const sheetName = "Visit History"

type XLSX struct{}

func (XLSX) Format() string    { return "xlsx" }
func (XLSX) Extension() string { return "xlsx" }
func (XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (XLSX) Encode(w io.Writer, rows []ports.ExportRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	header := make([]interface{}, len(ports.ExportHeaders))
	for i, h := range ports.ExportHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("xlsx: header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("xlsx: style: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("xlsx: %w", err)
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("xlsx: row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(ports.ExportHeaders))
	if err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 20); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}
