package statement

import "errors"

// Every parsing condition below is recoverable: the parser logs it together
// with the raw line and degrades to a zero value, an empty result, or a
// skipped record.
var (
	// ErrMalformedAmount means the amount token is missing or not a number.
	ErrMalformedAmount = errors.New("malformed amount")
	// ErrMarkerNotFound means no line contains the balance sentinel.
	ErrMarkerNotFound = errors.New("balance marker not found")
	// ErrInvalidBoundaries means the balance line indices cannot delimit a region.
	ErrInvalidBoundaries = errors.New("invalid balance boundaries")
	// ErrSegmentation means there was no line sequence to segment.
	ErrSegmentation = errors.New("segmentation failed")
	// ErrInvalidTransactionDate means the DD.MM. prefix plus year is not a calendar date.
	ErrInvalidTransactionDate = errors.New("invalid transaction date")
)
