package domain

import "errors"

var ErrUnsupportedExportFormat = errors.New("unsupported export format")
