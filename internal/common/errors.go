package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")

	// ErrSchemaNotFound is fatal to a run: without a schema no targeted extraction is possible.
	ErrSchemaNotFound = errors.New("schema not found")

	// Per-chunk failures; recovered locally as omitted data.
	ErrJobSubmissionFailed = errors.New("job submission failed")
	ErrJobFailed           = errors.New("job failed")
	ErrJobTimedOut         = errors.New("job timed out")
	ErrJobCanceled         = errors.New("job canceled")

	// ErrParseSkipped marks one table/JSON/brace fragment that could not be parsed.
	ErrParseSkipped = errors.New("fragment skipped")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// JobErrorKind names the way a chunk's job ended without content.
type JobErrorKind string

const (
	JobSubmissionFailed JobErrorKind = "JOB_SUBMISSION_FAILED"
	JobFailed           JobErrorKind = "JOB_FAILED"
	JobTimedOut         JobErrorKind = "JOB_TIMED_OUT"
	JobCanceled         JobErrorKind = "JOB_CANCELED"
)

func (k JobErrorKind) sentinel() error {
	switch k {
	case JobSubmissionFailed:
		return ErrJobSubmissionFailed
	case JobTimedOut:
		return ErrJobTimedOut
	case JobCanceled:
		return ErrJobCanceled
	default:
		return ErrJobFailed
	}
}

// JobError is the typed failure of one chunk's job. errors.Is matches both the
// kind's sentinel and the underlying cause.
type JobError struct {
	Kind       JobErrorKind
	ChunkIndex int
	RecordID   string
	Cause      error
}

func NewJobError(kind JobErrorKind, chunk int, recordID string, cause error) *JobError {
	return &JobError{Kind: kind, ChunkIndex: chunk, RecordID: recordID, Cause: cause}
}

func (e *JobError) Error() string {
	msg := fmt.Sprintf("chunk %d: %s", e.ChunkIndex, e.Kind)
	if e.RecordID != "" {
		msg += " (record " + e.RecordID + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *JobError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Cause}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func FailedPreconditionError(message string) error {
	return status.Error(codes.FailedPrecondition, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// ToStatus maps a run failure onto the gRPC status the caller should see.
func ToStatus(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrInvalidInput):
		return InvalidArgumentError(err.Error())
	case errors.Is(err, ErrSchemaNotFound):
		return FailedPreconditionError(err.Error())
	default:
		return InternalError(err.Error())
	}
}
