package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
)

func newJob(id string, created time.Time) *models.Job {
	return &models.Job{
		ID:        id,
		Status:    models.StatusPending,
		Request:   models.AnalysisRequest{Market: "technology", Region: models.RegionGlobal, Timeframe: models.TFWeekly},
		CreatedAt: created,
	}
}

func TestMemoryStorePutGetReturnsCopy(t *testing.T) {
	s := NewMemoryJobStore(time.Hour, 10)
	ctx := context.Background()

	if err := s.Put(ctx, newJob("a", time.Now())); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Status = models.StatusFailed

	again, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Status != models.StatusPending {
		t.Fatalf("caller mutation leaked into store: %s", again.Status)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	s := NewMemoryJobStore(20*time.Millisecond, 10)
	ctx := context.Background()

	_ = s.Put(ctx, newJob("a", time.Now()))
	_ = s.Put(ctx, newJob("b", time.Now()))

	time.Sleep(40 * time.Millisecond)

	if _, err := s.Get(ctx, "a"); !errors.Is(err, domainrepo.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for expired job, got %v", err)
	}
	if removed := s.EvictExpired(ctx); removed != 1 {
		t.Fatalf("expected 1 swept (other already removed on access), got %d", removed)
	}
	if n := s.Len(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}
}

func TestMemoryStoreCapacityEvictsOldest(t *testing.T) {
	s := NewMemoryJobStore(time.Hour, 3)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_ = s.Put(ctx, newJob(fmt.Sprintf("j%d", i), time.Now()))
		time.Sleep(2 * time.Millisecond)
	}

	if _, err := s.Get(ctx, "j0"); !errors.Is(err, domainrepo.ErrJobNotFound) {
		t.Fatalf("expected oldest job evicted, got %v", err)
	}
	for _, id := range []string{"j1", "j2", "j3"} {
		if _, err := s.Get(ctx, id); err != nil {
			t.Fatalf("job %s should survive eviction: %v", id, err)
		}
	}
}

func TestMemoryStoreTerminalJobsAreFrozen(t *testing.T) {
	s := NewMemoryJobStore(time.Hour, 10)
	ctx := context.Background()

	_ = s.Put(ctx, newJob("a", time.Now()))
	if err := s.Update(ctx, "a", func(j *models.Job) { j.Status = models.StatusCompleted }); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := s.Update(ctx, "a", func(j *models.Job) { j.Status = models.StatusFailed }); err != nil {
		t.Fatalf("update after terminal: %v", err)
	}

	got, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.StatusCompleted {
		t.Fatalf("terminal status must be frozen, got %s", got.Status)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	s := NewMemoryJobStore(time.Hour, 10)
	ctx := context.Background()

	base := time.Now()
	for i := 0; i < 5; i++ {
		_ = s.Put(ctx, newJob(fmt.Sprintf("j%d", i), base.Add(time.Duration(i)*time.Second)))
	}

	got, err := s.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(got))
	}
	if got[0].ID != "j4" || got[1].ID != "j3" || got[2].ID != "j2" {
		t.Fatalf("expected newest first, got %s %s %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	s := NewMemoryJobStore(time.Hour, 10)
	ctx := context.Background()

	_ = s.Put(ctx, newJob("a", time.Now()))
	if err := s.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "a"); !errors.Is(err, domainrepo.ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound on second delete, got %v", err)
	}
}
