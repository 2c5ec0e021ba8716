package tui

import "errors"

// ErrMissingRunFunc is returned when RunWithProgress is given no run function.
var ErrMissingRunFunc = errors.New("tui: run function is required")
