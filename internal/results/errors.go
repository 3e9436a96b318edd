package results

import "errors"

var (
	ErrNotFound      = errors.New("result not found")
	ErrDuplicate     = errors.New("result already recorded for run, sample, and model")
	ErrInvalidRecord = errors.New("invalid result record")
)
