// Package export renders visit history rows into downloadable files.
package export

import (
	"sort"

	"github.com/thorsignia/visitor-system/internal/core/ports"
)

// Encoders returns every supported encoder.
func Encoders() []ports.ExportEncoder {
	return []ports.ExportEncoder{XLSX{}, CSV{}}
}

// Formats lists the supported format names.
func Formats() []string {
	var out []string
	for _, enc := range Encoders() {
		out = append(out, enc.Format())
	}
	sort.Strings(out)
	return out
}
