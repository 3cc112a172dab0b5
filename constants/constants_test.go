package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampChunkSize(t *testing.T) {
	assert.Equal(t, DefaultChunkSize, ClampChunkSize(0))
	assert.Equal(t, MinChunkSize, ClampChunkSize(1))
	assert.Equal(t, MinChunkSize, ClampChunkSize(-3))
	assert.Equal(t, 7, ClampChunkSize(7))
	assert.Equal(t, MaxChunkSize, ClampChunkSize(40))
}

func TestRemoteStatus(t *testing.T) {
	assert.True(t, IsRemoteCompleted(" Completed "))
	assert.False(t, IsRemoteCompleted("processing"))
	assert.True(t, IsRemoteFailed("FAILED"))
	assert.True(t, IsRemoteFailed("error"))
	assert.False(t, IsRemoteFailed("completed"))
}

func TestJobStatusTerminal(t *testing.T) {
	assert.False(t, JobStatusSubmitted.Terminal())
	assert.False(t, JobStatusPolling.Terminal())
	assert.True(t, JobStatusCompleted.Terminal())
	assert.True(t, JobStatusFailed.Terminal())
	assert.True(t, JobStatusTimedOut.Terminal())
}

func TestIsAllowedExt(t *testing.T) {
	assert.True(t, IsAllowedExt(".PDF"))
	assert.True(t, IsAllowedExt("pdf"))
	assert.False(t, IsAllowedExt(".png"))
}
