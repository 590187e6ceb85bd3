package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DefaultDirName is the report directory created under the user's home when
// no directory is configured.
const DefaultDirName = "diagstation-reports"

// DefaultDir resolves the default report directory. Falls back to the
// working directory when the home directory cannot be determined.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// FileName builds the timestamped report file name.
func FileName(ts time.Time) string {
	return fmt.Sprintf("report_%s.txt", ts.Format("20060102_150405"))
}

// Write stores the report text under dir, creating the directory if needed.
// The identification must validate first: a report file is never produced for
// an anonymous session. The file is written to a temporary name and renamed
// into place so a crash mid-write never leaves a truncated report behind.
// Returns the final path.
func Write(dir string, ident Identification, content string) (string, error) {
	if err := ident.Validate(); err != nil {
		return "", fmt.Errorf("refuse to write report: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report directory: %w", err)
	}

	final := filepath.Join(dir, FileName(ident.Timestamp))

	tmp, err := os.CreateTemp(dir, ".report-*.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("finalize report: %w", err)
	}
	return final, nil
}
