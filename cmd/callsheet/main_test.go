package main

import (
	"path/filepath"
	"testing"
)

func TestUploadSeedsBreakdownAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	upload := writeUploadFixture(t, filepath.Join(env.baseDir, "rev1"), "White Draft", map[int][]string{
		1: {"1", "2"},
		2: {"3"},
	})

	out, _, err := runCLI(t, []string{"upload", upload}, env.configPath)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	requireContains(t, out, "Uploaded schedule 1 (White Draft)")
	requireContains(t, out, "Seeded breakdown with 3 scene(s)")

	out, _, err = runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "White Draft")
	requireContains(t, out, "0/2 days finished")
	requireContains(t, out, "pending")

	// With the cast resolved, schedule and breakdown agree since the
	// breakdown was seeded from the same upload.
	if _, _, err := runCLI(t, []string{"resolve-cast"}, env.configPath); err != nil {
		t.Fatalf("resolve-cast: %v", err)
	}
	out, _, err = runCLI(t, []string{"crossref"}, env.configPath)
	if err != nil {
		t.Fatalf("crossref: %v", err)
	}
	requireContains(t, out, "Schedule and breakdown agree.")
}

func TestCompareAndMergeBetweenRevisions(t *testing.T) {
	env := setupCLITestEnv(t)
	first := writeUploadFixture(t, filepath.Join(env.baseDir, "rev1"), "White Draft", map[int][]string{
		1: {"1", "2"},
	})
	second := writeUploadFixture(t, filepath.Join(env.baseDir, "rev2"), "Blue Revision", map[int][]string{
		1: {"1", "2"},
		2: {"3"},
	})

	if _, _, err := runCLI(t, []string{"upload", first}, env.configPath); err != nil {
		t.Fatalf("upload first: %v", err)
	}
	if _, _, err := runCLI(t, []string{"upload", second}, env.configPath); err != nil {
		t.Fatalf("upload second: %v", err)
	}

	out, _, err := runCLI(t, []string{"compare", "1", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	requireContains(t, out, "Added:")
	requireContains(t, out, "INT. STAGE 3 - DAY")

	out, _, err = runCLI(t, []string{"merge", "1", "2", "--all"}, env.configPath)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	requireContains(t, out, "Merged: 1 added")

	// Once merged (and the cast resolved), the new revision matches the
	// breakdown.
	if _, _, err := runCLI(t, []string{"resolve-cast", "--schedule", "2"}, env.configPath); err != nil {
		t.Fatalf("resolve-cast: %v", err)
	}
	out, _, err = runCLI(t, []string{"crossref", "--schedule", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("crossref: %v", err)
	}
	requireContains(t, out, "Schedule and breakdown agree.")
}

func TestMergeRequiresCategorySelection(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"merge", "1", "2"}, env.configPath); err == nil {
		t.Fatal("expected an error when no category is selected")
	}
}

func TestResolveCastCreatesPlaceholders(t *testing.T) {
	env := setupCLITestEnv(t)
	upload := writeUploadFixture(t, filepath.Join(env.baseDir, "rev1"), "White Draft", map[int][]string{
		1: {"1"},
	})
	if _, _, err := runCLI(t, []string{"upload", upload}, env.configPath); err != nil {
		t.Fatalf("upload: %v", err)
	}

	out, _, err := runCLI(t, []string{"resolve-cast"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve-cast: %v", err)
	}
	requireContains(t, out, "created 1 placeholder(s)")
	requireContains(t, out, "Alice Smith")

	// A second run matches the stored character instead of recreating it.
	out, _, err = runCLI(t, []string{"resolve-cast"}, env.configPath)
	if err != nil {
		t.Fatalf("resolve-cast again: %v", err)
	}
	requireContains(t, out, "Matched 1, created 0 placeholder(s)")
}
