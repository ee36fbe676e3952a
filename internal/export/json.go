package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Snapshot is the static-hosting export format: one dated table per file.
type Snapshot struct {
	Date  string `json:"date"`
	Total int    `json:"total"`
	Data  any    `json:"data"`
}

// WriteJSON writes a snapshot to path as indented JSON, creating parent
// directories as needed.
func WriteJSON(path string, snap Snapshot) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
