package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestJobError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewJobError(JobFailed, 2, "rec-9", cause)

	assert.ErrorIs(t, err, ErrJobFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrJobTimedOut)
	assert.Equal(t, "chunk 2: JOB_FAILED (record rec-9): connection reset", err.Error())
}

func TestJobError_WithoutCause(t *testing.T) {
	err := NewJobError(JobCanceled, 0, "", nil)
	assert.ErrorIs(t, err, ErrJobCanceled)
	assert.Equal(t, "chunk 0: JOB_CANCELED", err.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	err := WrapError(NewAppError("SCHEMA_NOT_FOUND", "no table", ErrSchemaNotFound), "discover")
	assert.ErrorIs(t, err, ErrSchemaNotFound)

	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SCHEMA_NOT_FOUND", appErr.Code)
	assert.Nil(t, WrapError(nil, "x"))
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(ToStatus(NewAppError("X", "bad", ErrInvalidInput))))
	assert.Equal(t, codes.FailedPrecondition, status.Code(ToStatus(NewAppError("X", "none", ErrSchemaNotFound))))
	assert.Equal(t, codes.Internal, status.Code(ToStatus(errors.New("boom"))))
}
