package types

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrConflict         = errors.New("item already exists or conflict")
	ErrUnauthenticated  = errors.New("authentication required or invalid credentials")
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrNotFound         = errors.New("requested item not found")
	ErrOwnership        = errors.New("resource belongs to another user")
	ErrEmptyResult      = errors.New("no attractions match the requested interests")
	ErrGenerationFailed = errors.New("itinerary generation failed")
	ErrStorage          = errors.New("storage failure")
)

// GenerationReason sub-classifies a delegated generation failure.
type GenerationReason string

const (
	GenerationReasonQuota      GenerationReason = "quota"
	GenerationReasonCredential GenerationReason = "credential"
	GenerationReasonGeneric    GenerationReason = "generic"
)

// GenerationError is returned for every failed delegated generation. It
// matches ErrGenerationFailed under errors.Is.
type GenerationError struct {
	Reason GenerationReason
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s (%s)", ErrGenerationFailed, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %v", ErrGenerationFailed, e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// UserMessage is the text shown to API clients.
func (e *GenerationError) UserMessage() string {
	switch e.Reason {
	case GenerationReasonQuota:
		return "AI service quota exceeded. Please try again later or contact support."
	case GenerationReasonCredential:
		return "AI service configuration error. Please contact support."
	default:
		return "Failed to generate itinerary. Please try again or contact support if the issue persists."
	}
}

func NewGenerationError(reason GenerationReason, err error) *GenerationError {
	return &GenerationError{Reason: reason, Err: err}
}
