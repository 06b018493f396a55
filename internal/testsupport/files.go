package testsupport

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"callsheet/internal/normalize"
)

// WriteUpload marshals a raw schedule upload to a JSON file under dir and
// returns the file path.
func WriteUpload(t testing.TB, dir string, raw normalize.RawUpload) string {
	t.Helper()

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		t.Fatalf("marshal upload: %v", err)
	}
	path := filepath.Join(dir, "schedule.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
