package snapshot

import "errors"

var (
	// ErrMalformedJSON is returned when a snapshot is not valid JSON
	ErrMalformedJSON = errors.New("snapshot is not valid JSON")

	// ErrInvalidSnapshot is returned when a snapshot parses but does not have the invoice shape
	ErrInvalidSnapshot = errors.New("snapshot does not describe an invoice")

	// ErrTooLarge is returned when a snapshot exceeds MaxSize
	ErrTooLarge = errors.New("snapshot exceeds size limit")
)
