package velocity

import "errors"

// Sentinel kinds for reducer errors. These allow errors.Is/As from callers.
var (
	ErrMissingDate = errors.New("action has no timestamp")
)
