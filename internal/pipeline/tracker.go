package pipeline

import (
	"sync"
	"time"
)

// Run is the observable state of one ingestion, keyed by file ID.
type Run struct {
	FileID    string    `json:"file_id"`
	Filename  string    `json:"filename"`
	Status    Status    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Tracker is a thread-safe in-memory registry of ingestion runs with TTL
// eviction, so callers can poll progress while a synchronous ingest is in
// flight.
type Tracker struct {
	mu   sync.Mutex
	runs map[string]*Run
	ttl  time.Duration
}

func NewTracker(ttl time.Duration) *Tracker {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Tracker{
		runs: make(map[string]*Run),
		ttl:  ttl,
	}
}

// Begin registers a run and returns the StatusFunc that updates it.
func (t *Tracker) Begin(fileID, filename string) StatusFunc {
	now := time.Now()
	t.mu.Lock()
	t.runs[fileID] = &Run{
		FileID:    fileID,
		Filename:  filename,
		Status:    Status{Stage: StageExtracting, Message: "queued"},
		StartedAt: now,
		UpdatedAt: now,
	}
	t.mu.Unlock()

	return func(s Status) {
		t.mu.Lock()
		defer t.mu.Unlock()
		if run, ok := t.runs[fileID]; ok {
			run.Status = s
			run.UpdatedAt = time.Now()
		}
	}
}

// Get returns a copy of a run's state, or false if unknown.
func (t *Tracker) Get(fileID string) (Run, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	run, ok := t.runs[fileID]
	if !ok {
		return Run{}, false
	}
	return *run, true
}

// Delete drops a run (used when its document is deleted).
func (t *Tracker) Delete(fileID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.runs, fileID)
}

// Cleanup removes expired runs.
func (t *Tracker) Cleanup() {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	for id, run := range t.runs {
		if now.Sub(run.UpdatedAt) > t.ttl {
			delete(t.runs, id)
		}
	}
}
