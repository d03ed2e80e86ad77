package ais

import "errors"

var (
	// ErrMalformedSentence is returned when a sentence has fewer than six fields.
	ErrMalformedSentence = errors.New("malformed sentence")
	// ErrEmptyPayload is returned when the payload field is empty.
	ErrEmptyPayload = errors.New("empty payload")
	// ErrInvalidArmor is returned when the payload holds a character outside
	// the six-bit armor alphabet.
	ErrInvalidArmor = errors.New("invalid armor character")
)
