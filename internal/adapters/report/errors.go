package report

import "errors"

// Sentinel kinds for sink errors.
var (
	ErrUnsupportedScheme = errors.New("unsupported output scheme")
)
