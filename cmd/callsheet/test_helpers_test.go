package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"callsheet/internal/normalize"
	"callsheet/internal/testsupport"
)

type cliTestEnv struct {
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q

[extraction]
api_key = "test"
base_url = "http://127.0.0.1:0"
`, filepath.Join(base, "data"), filepath.Join(base, "logs"))
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return &cliTestEnv{configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeUploadFixture(t *testing.T, dir string, title string, sceneNumbers map[int][]string) string {
	t.Helper()

	raw := normalize.RawUpload{Title: title}
	for day := 1; day <= len(sceneNumbers); day++ {
		rawDay := normalize.RawDay{
			DayNumber: fmt.Sprintf("%d", day),
			Date:      fmt.Sprintf("2026-03-%02d", day+1),
		}
		for _, number := range sceneNumbers[day] {
			rawDay.Scenes = append(rawDay.Scenes, normalize.RawScene{
				SceneNumber: number,
				Slugline:    fmt.Sprintf("INT. STAGE %s - DAY", number),
				Cast:        []string{"1"},
			})
		}
		raw.Days = append(raw.Days, rawDay)
	}
	raw.Cast = []normalize.RawCastEntry{{Number: "1", Name: "Alice Smith"}}

	return testsupport.WriteUpload(t, dir, raw)
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
