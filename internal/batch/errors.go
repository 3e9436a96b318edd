package batch

import "errors"

var (
	ErrEmptyMatrix = errors.New("batch matrix is empty")
	ErrPairsFailed = errors.New("one or more pairs failed")
)
