package export

import (
	"encoding/csv"
	"io"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// CSV writes UTF-8 with a byte order mark so spreadsheet tools pick the right encoding.
type CSV struct{}

func (CSV) Format() string      { return "csv" }
func (CSV) Extension() string   { return "csv" }
func (CSV) ContentType() string { return "text/csv; charset=utf-8" }

func (CSV) Encode(w io.Writer, rows []ports.ExportRow) error {
	bw := transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
	cw := csv.NewWriter(bw)

	if err := cw.Write(ports.ExportHeaders); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row[:]); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Close()
}
