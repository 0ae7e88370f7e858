package pixfx

import "errors"

var (
	// ErrInvalidBuffer is returned when a pixel buffer is missing, empty,
	// inconsistent with its dimensions or mismatched against a target.
	ErrInvalidBuffer = errors.New("invalid pixel buffer")
	// ErrMalformedMatrix is returned when a color matrix is built from a
	// coefficient list of the wrong length or with non-finite values.
	ErrMalformedMatrix = errors.New("malformed color matrix")
	// ErrPersistence is returned when a finished buffer could not be stored.
	// The underlying sink error is wrapped alongside it.
	ErrPersistence = errors.New("persistence failure")
)
