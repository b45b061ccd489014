package storage

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadArchiveSaveAndOpen(t *testing.T) {
	archive, err := NewUploadArchive(t.TempDir())
	require.NoError(t, err)

	name, err := archive.Save("run-1", "xlsx", []byte("payload"))
	require.NoError(t, err)
	assert.Equal(t, "run-1.xlsx", name)

	data, format, err := archive.Open("run-1")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", format)
	assert.Equal(t, []byte("payload"), data)
}

func TestUploadArchiveOpenMissing(t *testing.T) {
	archive, err := NewUploadArchive(t.TempDir())
	require.NoError(t, err)

	_, _, err = archive.Open("never-saved")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUploadArchiveRejectsPathTraversal(t *testing.T) {
	archive, err := NewUploadArchive(t.TempDir())
	require.NoError(t, err)

	_, _, err = archive.Open("../etc/passwd")
	require.Error(t, err)
	assert.NotErrorIs(t, err, os.ErrNotExist)
}

func TestUploadArchiveCleanup(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewUploadArchive(dir)
	require.NoError(t, err)

	_, err = archive.Save("old-run", "json", []byte("{}"))
	require.NoError(t, err)

	deleted, err := archive.CleanupOlderThan(-time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []string{"old-run.json"}, deleted)

	_, _, err = archive.Open("old-run")
	assert.ErrorIs(t, err, os.ErrNotExist)
}
