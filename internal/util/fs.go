package util

import (
	"fmt"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// RunDir is where a run's artifacts live.
func RunDir(outRoot, runID string) string {
	return filepath.Join(outRoot, "runs", filepath.Base(runID))
}
