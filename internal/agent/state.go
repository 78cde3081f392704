package agent

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

type state struct {
	LastCaptureAt   time.Time `json:"last_capture_at"`
	TokenCount      int       `json:"token_count"`
	BookCount       int       `json:"book_count"`
	LastSnapshotDir string    `json:"last_snapshot_dir,omitempty"`
}

func stateFile(dir string) string { return filepath.Join(dir, "status.json") }

func loadState(dir string) (state, error) {
	b, err := os.ReadFile(stateFile(dir))
	if err != nil {
		return state{}, err
	}
	var st state
	if err := json.Unmarshal(b, &st); err != nil {
		return state{}, err
	}
	return st, nil
}

func saveState(dir string, st state) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp := stateFile(dir) + ".tmp"
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, stateFile(dir))
}
