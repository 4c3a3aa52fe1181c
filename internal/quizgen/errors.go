package quizgen

import (
	"context"
	"errors"
	"fmt"
)

// FaultKind classifies why a generation did not produce a validated quiz.
type FaultKind string

const (
	FaultNone            FaultKind = ""
	FaultTransport       FaultKind = "transport"
	FaultMalformedOutput FaultKind = "malformed_output"
	FaultSchemaMismatch  FaultKind = "schema_mismatch"
	FaultRepairExhausted FaultKind = "repair_exhausted"
	FaultInvalidRequest  FaultKind = "invalid_request"
	FaultAborted         FaultKind = "aborted"
)

// TransportFault means the backend could not be reached or produced no
// output. It is never reported as malformed output.
type TransportFault struct {
	Stage   string // "initial" or "repair"
	Attempt int    // repair attempt index, 0 for the initial call
	Model   string
	Err     error
}

func (e *TransportFault) Error() string {
	if e.Stage == "repair" {
		return fmt.Sprintf("backend unavailable during repair attempt %d (model %s): %v", e.Attempt, e.Model, e.Err)
	}
	return fmt.Sprintf("backend unavailable (model %s): %v", e.Model, e.Err)
}

func (e *TransportFault) Unwrap() error { return e.Err }

// MalformedOutputError means no parseable payload was found in the text.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error { return e.Err }

// SchemaMismatchError means a payload parsed but has the wrong shape.
type SchemaMismatchError struct {
	Raw string
	Err error
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("schema mismatch: %v", e.Err)
}

func (e *SchemaMismatchError) Unwrap() error { return e.Err }

// RepairExhaustedError means every repair attempt failed. LastText is the
// most recent failing backend output.
type RepairExhaustedError struct {
	Attempts int
	LastText string
	LastErr  error
}

func (e *RepairExhaustedError) Error() string {
	return fmt.Sprintf("repair exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *RepairExhaustedError) Unwrap() error { return e.LastErr }

// AbortedError means the caller cancelled, or the overall deadline passed,
// between backend calls.
type AbortedError struct {
	Attempts int
	LastText string
	Err      error
}

func (e *AbortedError) Error() string {
	return fmt.Sprintf("generation aborted after %d repair attempts: %v", e.Attempts, e.Err)
}

func (e *AbortedError) Unwrap() error { return e.Err }

// RequestError reports an invalid GenerationRequest.
type RequestError struct {
	Field   string
	Message string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// ValidationError is returned by a Validator. It surfaces wrapped in a
// SchemaMismatchError.
type ValidationError struct {
	Validator string
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: %s", e.Validator, e.Message)
}

// KindOf classifies err. A RepairExhaustedError is reported as such even
// though it wraps the last extraction failure.
func KindOf(err error) FaultKind {
	if err == nil {
		return FaultNone
	}
	var (
		req       *RequestError
		aborted   *AbortedError
		exhausted *RepairExhaustedError
		transport *TransportFault
		malformed *MalformedOutputError
		mismatch  *SchemaMismatchError
	)
	switch {
	case errors.As(err, &req):
		return FaultInvalidRequest
	case errors.As(err, &aborted):
		return FaultAborted
	case errors.As(err, &exhausted):
		return FaultRepairExhausted
	case errors.As(err, &transport):
		return FaultTransport
	case errors.As(err, &malformed):
		return FaultMalformedOutput
	case errors.As(err, &mismatch):
		return FaultSchemaMismatch
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return FaultAborted
	}
	return FaultTransport
}
