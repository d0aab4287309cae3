package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BackupName is the default export file name for the given day.
func BackupName(now time.Time) string {
	return fmt.Sprintf("planner-backup-%s.json", now.Format("2006-01-02"))
}

// WriteFile exports s as an indented document.
func WriteFile(path string, s State) error {
	data, err := json.MarshalIndent(normalize(s), "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create export dir: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// ReadFile loads and fully validates an exported document.
func ReadFile(path string) (State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return State{}, fmt.Errorf("read import: %w", err)
	}
	s, err := Decode(data)
	if err != nil {
		return State{}, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	return s, nil
}
