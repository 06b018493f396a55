package testsupport

import (
	"context"
	"testing"

	"callsheet/internal/breakdown"
	"callsheet/internal/config"
	"callsheet/internal/production"
)

// MustOpenStore opens a breakdown.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *breakdown.Store {
	t.Helper()

	store, err := breakdown.Open(cfg)
	if err != nil {
		t.Fatalf("breakdown.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// MustCreateSchedule inserts a schedule snapshot for tests using the provided store.
func MustCreateSchedule(t testing.TB, store *breakdown.Store, title string, snapshot production.Snapshot) *breakdown.Schedule {
	t.Helper()

	schedule, err := store.CreateSchedule(context.Background(), title, snapshot)
	if err != nil {
		t.Fatalf("store.CreateSchedule: %v", err)
	}
	return schedule
}
