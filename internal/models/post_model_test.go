package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlatform(t *testing.T) {
	for _, valid := range []string{"INSTAGRAM", "TIKTOK", "YOUTUBE"} {
		platform, err := ParsePlatform(valid)
		require.NoError(t, err)
		assert.Equal(t, Platform(valid), platform)
	}

	for _, invalid := range []string{"", "instagram", "FACEBOOK", "YOUTUBE ", "X"} {
		_, err := ParsePlatform(invalid)
		assert.Error(t, err, "expected %q to be rejected", invalid)
	}
}

func TestParsePostStatus(t *testing.T) {
	for _, valid := range []string{"DRAFT", "SCHEDULED", "PUBLISHING", "PUBLISHED", "PARTIAL", "FAILED"} {
		status, err := ParsePostStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, PostStatus(valid), status)
	}

	_, err := ParsePostStatus("draft")
	assert.Error(t, err)
	_, err = ParsePostStatus("DELETED")
	assert.Error(t, err)
}

func TestParseJobStatus(t *testing.T) {
	for _, valid := range []string{"PENDING", "PROCESSING", "COMPLETED", "FAILED"} {
		status, err := ParseJobStatus(valid)
		require.NoError(t, err)
		assert.Equal(t, JobStatus(valid), status)
	}

	_, err := ParseJobStatus("DONE")
	assert.Error(t, err)
}

func TestPostStatusEditable(t *testing.T) {
	assert.True(t, PostStatusDraft.Editable())
	assert.True(t, PostStatusScheduled.Editable())

	for _, locked := range []PostStatus{PostStatusPublishing, PostStatusPublished, PostStatusPartial, PostStatusFailed} {
		assert.False(t, locked.Editable(), "status %s must not be editable", locked)
	}
}
