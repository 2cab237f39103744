package domain

import "errors"

var (
	// ErrNotFound is returned by repositories when the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation marks a request that failed a presence check.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidDateTime is returned when wall-clock date or time fields do not parse.
	ErrInvalidDateTime = errors.New("invalid date or time")

	ErrNoAIResponse         = errors.New("no response from AI")
	ErrUnparsableAIResponse = errors.New("could not parse AI response")
	ErrAINotConfigured      = errors.New("missing API key")
)
