package repository

import (
	"sync"
	"testing"

	"github.com/accessivision/backend/internal/domain"
)

func TestJobRepositoryCreateUniqueIDs(t *testing.T) {
	repo := NewJobRepository()

	seen := map[string]struct{}{}
	for i := 0; i < 100; i++ {
		id := repo.Create()
		if id == "" {
			t.Fatal("expected non-empty job ID")
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate job ID %s", id)
		}
		seen[id] = struct{}{}
	}

	if repo.Count() != 100 {
		t.Errorf("expected 100 jobs, got %d", repo.Count())
	}
}

func TestJobRepositoryCreateInitialState(t *testing.T) {
	repo := NewJobRepository()
	id := repo.Create()

	job, ok := repo.Get(id)
	if !ok {
		t.Fatal("expected job to exist")
	}
	if job.Status != domain.JobStatusProcessing {
		t.Errorf("expected processing status, got %s", job.Status)
	}
	if job.TotalItems != 0 || job.AuditProgress != 0 || job.GenerationProgress != 0 {
		t.Error("expected zero-valued progress fields")
	}
	if job.Results == nil || len(job.Results) != 0 {
		t.Error("expected empty, non-nil results")
	}
}

func TestJobRepositoryGetUnknown(t *testing.T) {
	repo := NewJobRepository()

	if _, ok := repo.Get("no-such-job"); ok {
		t.Error("expected Get on unknown ID to report not found")
	}
	if repo.Mutate("no-such-job", func(j *domain.Job) {}) {
		t.Error("expected Mutate on unknown ID to report not found")
	}
}

func TestJobRepositoryGetReturnsSnapshot(t *testing.T) {
	repo := NewJobRepository()
	id := repo.Create()

	repo.Mutate(id, func(j *domain.Job) {
		j.Results = append(j.Results, domain.Result{
			ItemIndex: 1,
			SourceURL: "https://cdn.example.com/1.jpg",
			Audit:     &domain.AuditOutcome{BarrierDetected: "stairs"},
		})
	})

	snapshot, _ := repo.Get(id)
	snapshot.Results[0].Audit.BarrierDetected = "mutated by caller"
	snapshot.Results = append(snapshot.Results, domain.Result{ItemIndex: 2})

	fresh, _ := repo.Get(id)
	if len(fresh.Results) != 1 {
		t.Fatalf("snapshot mutation leaked into registry: %d results", len(fresh.Results))
	}
	if fresh.Results[0].Audit.BarrierDetected != "stairs" {
		t.Error("snapshot audit mutation leaked into registry")
	}
}

func TestJobRepositoryConcurrentMutateAndGet(t *testing.T) {
	repo := NewJobRepository()
	id := repo.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			repo.Mutate(id, func(j *domain.Job) {
				j.AuditProgress++
			})
		}()
		go func() {
			defer wg.Done()
			if job, ok := repo.Get(id); ok && job.AuditProgress < 0 {
				t.Error("observed inconsistent progress")
			}
		}()
	}
	wg.Wait()

	job, _ := repo.Get(id)
	if job.AuditProgress != 50 {
		t.Errorf("expected 50 increments, got %d", job.AuditProgress)
	}
}
