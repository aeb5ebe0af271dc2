package jobs_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"orgscan/internal/jobs"
	"orgscan/internal/testsupport"
)

func TestCreateAssignsIdentityAndPendingStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job, err := store.Create(ctx, "report.pdf")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected job ID to be assigned")
	}
	if job.Status != jobs.StatusPending {
		t.Fatalf("expected pending status, got %s", job.Status)
	}
	if job.CreatedAt.IsZero() {
		t.Fatal("expected creation timestamp")
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched == nil || fetched.Filename != "report.pdf" {
		t.Fatalf("unexpected fetched job: %#v", fetched)
	}
}

func TestCreateRequiresFilename(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.Create(context.Background(), "  "); err == nil {
		t.Fatal("expected error when filename missing")
	}
}

func TestGetByIDReturnsNilForMissingJob(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	job, err := store.GetByID(context.Background(), "11111111-2222-3333-4444-555555555555")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %#v", job)
	}
}

func TestUpdateAppliesMutationAtomically(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "acme.pdf")

	updated, err := store.Update(ctx, job.ID, func(j *jobs.Job) error {
		j.SetProcessing()
		j.TaskID = "task-1"
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != jobs.StatusProcessing || updated.TaskID != "task-1" {
		t.Fatalf("unexpected updated job: %#v", updated)
	}
	if !updated.UpdatedAt.After(job.UpdatedAt) && !updated.UpdatedAt.Equal(job.UpdatedAt) {
		t.Fatalf("expected updated_at to advance: %v -> %v", job.UpdatedAt, updated.UpdatedAt)
	}

	fetched, err := store.GetByID(ctx, job.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != jobs.StatusProcessing || fetched.TaskID != "task-1" {
		t.Fatalf("mutation not persisted: %#v", fetched)
	}
}

func TestUpdateMissingJobReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	invoked := false
	job, err := store.Update(context.Background(), "missing-id", func(j *jobs.Job) error {
		invoked = true
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if job != nil {
		t.Fatalf("expected nil for missing job, got %#v", job)
	}
	if invoked {
		t.Fatal("mutation must not run for a missing job")
	}
}

func TestUpdateRejectsInvariantViolations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "acme.pdf")

	cases := []struct {
		name   string
		mutate func(*jobs.Job) error
	}{
		{"failed without message", func(j *jobs.Job) error {
			j.Status = jobs.StatusFailed
			return nil
		}},
		{"error message on completed", func(j *jobs.Job) error {
			j.Status = jobs.StatusCompleted
			j.ErrorMessage = "leftover"
			return nil
		}},
		{"enrichment on pending", func(j *jobs.Job) error {
			j.MembersJSON = `[{"login":"x"}]`
			return nil
		}},
		{"unknown status", func(j *jobs.Job) error {
			j.Status = jobs.Status("archived")
			return nil
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := store.Update(ctx, job.ID, tc.mutate); err == nil {
				t.Fatal("expected invariant violation to be rejected")
			}
			fetched, err := store.GetByID(ctx, job.ID)
			if err != nil {
				t.Fatalf("GetByID failed: %v", err)
			}
			if fetched.Status != jobs.StatusPending {
				t.Fatalf("rejected update must not persist, got status %s", fetched.Status)
			}
		})
	}
}

func TestSetFailedDiscardsPartialEnrichment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	job := testsupport.NewJob(t, store, "acme.pdf")

	updated, err := store.Update(ctx, job.ID, func(j *jobs.Job) error {
		j.CompanyName = "google"
		if err := j.SetMembers([]jobs.MemberSummary{{Login: "octocat"}}); err != nil {
			return err
		}
		j.SetFailed("pdftotext: exit status 1")
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", updated.Status)
	}
	if updated.CompanyName != "" || updated.OrgProfileJSON != "" || updated.MembersJSON != "" {
		t.Fatalf("expected enrichment discarded on failure: %#v", updated)
	}
	if updated.ErrorMessage != "pdftotext: exit status 1" {
		t.Fatalf("expected verbatim message, got %q", updated.ErrorMessage)
	}
}

func TestListOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	var ids []string
	for i := 0; i < 3; i++ {
		job := testsupport.NewJob(t, store, fmt.Sprintf("doc-%d.pdf", i))
		ids = append(ids, job.ID)
		time.Sleep(2 * time.Millisecond)
	}

	listed, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(listed))
	}
	for i, job := range listed {
		want := ids[len(ids)-1-i]
		if job.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, job.ID)
		}
	}
}

func TestRequeueStuckProcessing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	stuck := testsupport.NewJob(t, store, "stuck.pdf")
	if _, err := store.Update(ctx, stuck.ID, func(j *jobs.Job) error {
		j.SetProcessing()
		j.TaskID = "task-dead"
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	done := testsupport.NewJob(t, store, "done.pdf")
	if _, err := store.Update(ctx, done.ID, func(j *jobs.Job) error {
		j.SetCompleted()
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	count, err := store.RequeueStuckProcessing(ctx)
	if err != nil {
		t.Fatalf("RequeueStuckProcessing failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 job requeued, got %d", count)
	}

	fetched, err := store.GetByID(ctx, stuck.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fetched.Status != jobs.StatusPending || fetched.TaskID != "" {
		t.Fatalf("expected pending with cleared task, got %#v", fetched)
	}

	terminal, err := store.GetByID(ctx, done.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if terminal.Status != jobs.StatusCompleted {
		t.Fatalf("terminal job must be untouched, got %s", terminal.Status)
	}
}

func TestCountByStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	testsupport.NewJob(t, store, "a.pdf")
	job := testsupport.NewJob(t, store, "b.pdf")
	if _, err := store.Update(ctx, job.ID, func(j *jobs.Job) error {
		j.SetFailed("boom")
		return nil
	}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[jobs.StatusPending] != 1 || counts[jobs.StatusFailed] != 1 {
		t.Fatalf("unexpected counts: %#v", counts)
	}
}
