package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"TrendPulse/internal/domain/models"
	domainrepo "TrendPulse/internal/domain/repository"
)

type memEntry struct {
	job      *models.Job
	storedAt time.Time
}

// MemoryJobStore keeps jobs in process memory with a retention window and a
// hard capacity. When the store is full the oldest entry is evicted to make
// room. Expired entries are unreachable from Get even before a sweep runs.
type MemoryJobStore struct {
	mu        sync.RWMutex
	jobs      map[string]*memEntry
	retention time.Duration
	maxStored int
}

// NewMemoryJobStore creates an in-memory job store.
func NewMemoryJobStore(retention time.Duration, maxStored int) *MemoryJobStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	if maxStored <= 0 {
		maxStored = 1000
	}
	return &MemoryJobStore{
		jobs:      make(map[string]*memEntry),
		retention: retention,
		maxStored: maxStored,
	}
}

func (s *MemoryJobStore) expired(e *memEntry, now time.Time) bool {
	return now.Sub(e.storedAt) > s.retention
}

// Put inserts a job, evicting the oldest entries when the store is full.
func (s *MemoryJobStore) Put(ctx context.Context, job *models.Job) error {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.jobs {
		if s.expired(e, now) {
			delete(s.jobs, id)
		}
	}
	for len(s.jobs) >= s.maxStored {
		oldestID := ""
		var oldest time.Time
		for id, e := range s.jobs {
			if oldestID == "" || e.storedAt.Before(oldest) {
				oldestID = id
				oldest = e.storedAt
			}
		}
		delete(s.jobs, oldestID)
	}

	s.jobs[job.ID] = &memEntry{job: job.Clone(), storedAt: now}
	return nil
}

// Get returns a copy of the job or ErrJobNotFound for unknown or expired ids.
func (s *MemoryJobStore) Get(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	e, ok := s.jobs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domainrepo.ErrJobNotFound
	}
	if s.expired(e, time.Now()) {
		s.mu.Lock()
		delete(s.jobs, id)
		s.mu.Unlock()
		return nil, domainrepo.ErrJobNotFound
	}
	return e.job.Clone(), nil
}

// Update applies fn to the stored job under the store lock. Terminal jobs are
// frozen: once completed or failed the mutation is dropped.
func (s *MemoryJobStore) Update(ctx context.Context, id string, fn func(*models.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok || s.expired(e, time.Now()) {
		delete(s.jobs, id)
		return domainrepo.ErrJobNotFound
	}
	if e.job.Status.IsTerminal() {
		return nil
	}
	fn(e.job)
	return nil
}

// Delete removes a job. Unknown ids return ErrJobNotFound.
func (s *MemoryJobStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.jobs[id]
	if !ok || s.expired(e, time.Now()) {
		delete(s.jobs, id)
		return domainrepo.ErrJobNotFound
	}
	delete(s.jobs, id)
	return nil
}

// List returns up to limit job summaries, newest first.
func (s *MemoryJobStore) List(ctx context.Context, limit int) ([]models.Summary, error) {
	now := time.Now()

	s.mu.RLock()
	out := make([]models.Summary, 0, len(s.jobs))
	for _, e := range s.jobs {
		if s.expired(e, now) {
			continue
		}
		out = append(out, e.job.Summarize())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// EvictExpired removes every entry older than the retention window.
func (s *MemoryJobStore) EvictExpired(ctx context.Context) int {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.jobs {
		if s.expired(e, now) {
			delete(s.jobs, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries.
func (s *MemoryJobStore) Len(ctx context.Context) int {
	now := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, e := range s.jobs {
		if !s.expired(e, now) {
			n++
		}
	}
	return n
}
