package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/storage"
)

func TestCheckpointLifecycle(t *testing.T) {
	setupCLI(t)

	assert.Contains(t, mustExecute(t, "checkpoint", "list"), "No checkpoints found")

	mustExecute(t, "income", "add", "1,000", "before", "--date", "2025-06-01")
	out := mustExecute(t, "checkpoint", "create", "--tag", "baseline", "--description", "one income")
	assert.Contains(t, out, "Created checkpoint baseline")
	assert.Contains(t, out, "one income")

	_, err := execute(t, "checkpoint", "create", "--tag", "baseline")
	assert.ErrorIs(t, err, storage.ErrCheckpointExists)

	mustExecute(t, "income", "add", "2,000", "after", "--date", "2025-06-02")

	out = mustExecute(t, "checkpoint", "restore", "baseline", "--yes")
	assert.Contains(t, out, "Restored from checkpoint baseline")
	assert.Contains(t, out, "Saved checkpoint auto-restore")

	out = mustExecute(t, "tx", "list", "--all")
	assert.Contains(t, out, "before")
	assert.NotContains(t, out, "after")

	out = mustExecute(t, "checkpoint", "list")
	assert.Contains(t, out, "baseline")
	assert.Contains(t, out, "auto-restore")

	mustExecute(t, "checkpoint", "delete", "baseline", "--yes")
	_, err = execute(t, "checkpoint", "restore", "baseline", "--yes")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrCheckpointNotFound)
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", formatFileSize(512))
	assert.Equal(t, "1.5 KB", formatFileSize(1536))
	assert.Equal(t, "2.0 MB", formatFileSize(2*1024*1024))
}
