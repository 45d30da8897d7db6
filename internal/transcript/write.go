package transcript

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write stores the rendered document at path, replacing any previous file
// only once the new contents are fully on disk.
func Write(path string, doc Document) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.part")
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.WriteString(doc.Render()); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("set output permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}

	success = true
	return nil
}
