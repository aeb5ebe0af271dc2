package testsupport

import (
	"context"
	"testing"

	"orgscan/internal/config"
	"orgscan/internal/jobs"
)

// MustOpenStore opens a jobs.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *jobs.Store {
	t.Helper()

	store, err := jobs.Open(cfg)
	if err != nil {
		t.Fatalf("jobs.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a pending job for tests using the provided store.
func NewJob(t testing.TB, store *jobs.Store, filename string) *jobs.Job {
	t.Helper()

	job, err := store.Create(context.Background(), filename)
	if err != nil {
		t.Fatalf("store.Create: %v", err)
	}
	return job
}
