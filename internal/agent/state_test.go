package agent

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStateRoundtrip(t *testing.T) {
	dir := t.TempDir()

	want := state{
		LastCaptureAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TokenCount:      180,
		BookCount:       175,
		LastSnapshotDir: "/data/bronze/polymarket/2025-06-01/120000",
	}
	if err := saveState(dir, want); err != nil {
		t.Fatalf("saveState: %v", err)
	}

	got, err := loadState(dir)
	if err != nil {
		t.Fatalf("loadState: %v", err)
	}
	if !got.LastCaptureAt.Equal(want.LastCaptureAt) {
		t.Errorf("LastCaptureAt = %v, want %v", got.LastCaptureAt, want.LastCaptureAt)
	}
	if got.TokenCount != want.TokenCount || got.BookCount != want.BookCount {
		t.Errorf("counts = %d/%d, want %d/%d", got.TokenCount, got.BookCount, want.TokenCount, want.BookCount)
	}
	if got.LastSnapshotDir != want.LastSnapshotDir {
		t.Errorf("LastSnapshotDir = %s, want %s", got.LastSnapshotDir, want.LastSnapshotDir)
	}

	// Save writes via a temp file and rename; no temp litter remains.
	if _, err := os.Stat(filepath.Join(dir, "status.json.tmp")); !os.IsNotExist(err) {
		t.Error("temp state file left behind")
	}
}

func TestLoadStateMissing(t *testing.T) {
	if _, err := loadState(t.TempDir()); err == nil {
		t.Fatal("expected error for missing state file")
	}
}
