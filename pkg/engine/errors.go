package engine

import "errors"

// Engine-specific errors
var (
	ErrFormulaNotFound = errors.New("formula not found")
	ErrUnknownTimezone = errors.New("unknown timezone")
	ErrNoFormulas      = errors.New("no formulas loaded")
	ErrNotStarted      = errors.New("engine service not started")
)
