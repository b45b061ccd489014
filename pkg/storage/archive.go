package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// UploadArchive keeps the raw payload of every import attempt on disk so a
// failed run can be inspected later. Files are named <run id>.<format>.
type UploadArchive struct {
	baseDir string
}

// NewUploadArchive ensures the base directory exists and returns a handle.
func NewUploadArchive(baseDir string) (*UploadArchive, error) {
	if baseDir == "" {
		baseDir = "./uploads"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload archive directory: %w", err)
	}
	return &UploadArchive{baseDir: baseDir}, nil
}

// Save writes the raw payload of one import run. The format becomes the file
// extension.
func (a *UploadArchive) Save(runID, format string, data []byte) (string, error) {
	name := a.filename(runID, format)
	if err := os.WriteFile(filepath.Join(a.baseDir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write archived upload: %w", err)
	}
	return name, nil
}

// Open returns the archived payload for a run, trying the known formats. The
// caller gets os.ErrNotExist when the run was never archived.
func (a *UploadArchive) Open(runID string) ([]byte, string, error) {
	if strings.ContainsAny(runID, "/\\.") {
		return nil, "", fmt.Errorf("invalid run id %q", runID)
	}
	for _, format := range []string{"xlsx", "json"} {
		data, err := os.ReadFile(filepath.Join(a.baseDir, a.filename(runID, format)))
		if err == nil {
			return data, format, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", fmt.Errorf("read archived upload: %w", err)
		}
	}
	return nil, "", os.ErrNotExist
}

// CleanupOlderThan removes archived uploads past the TTL and returns the
// deleted names.
func (a *UploadArchive) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	cutoff := time.Now().Add(-ttl)
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("list upload archive: %w", err)
	}
	deleted := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, err
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(a.baseDir, entry.Name())); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		deleted = append(deleted, entry.Name())
	}
	return deleted, nil
}

func (a *UploadArchive) filename(runID, format string) string {
	return runID + "." + format
}
