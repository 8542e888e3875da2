package store

import (
	"context"
	"sync"

	"ingestgw/internal/models"
)

// MemorySink keeps written records in memory. Used when no external sink is
// configured and in tests.
type MemorySink struct {
	mu      sync.Mutex
	streams map[StreamKey][]models.NormalizedRecord

	// Reject, when set, is consulted per record; a non-empty reason fails it
	Reject func(key StreamKey, rec models.NormalizedRecord) string
	// Err, when set, fails every Write as a whole
	Err error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{streams: make(map[StreamKey][]models.NormalizedRecord)}
}

func (s *MemorySink) Write(ctx context.Context, key StreamKey, records []models.NormalizedRecord) (WriteResult, error) {
	if err := ctx.Err(); err != nil {
		return WriteResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return WriteResult{}, s.Err
	}

	var res WriteResult
	for i, rec := range records {
		if s.Reject != nil {
			if reason := s.Reject(key, rec); reason != "" {
				res.Failed = append(res.Failed, FailedRecord{Index: i, Reason: reason})
				continue
			}
		}
		s.streams[key] = append(s.streams[key], rec)
		res.Accepted++
	}
	return res, nil
}

// Records returns a copy of what was written to key
func (s *MemorySink) Records(key StreamKey) []models.NormalizedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.NormalizedRecord(nil), s.streams[key]...)
}

func (s *MemorySink) Close() error { return nil }

var _ Sink = (*MemorySink)(nil)

// MemoryRegistry is an in-process StreamRegistry
type MemoryRegistry struct {
	mu       sync.RWMutex
	streams  map[StreamKey]struct{}
	deleting map[StreamKey]struct{}
	creates  int
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		streams:  make(map[StreamKey]struct{}),
		deleting: make(map[StreamKey]struct{}),
	}
}

func (r *MemoryRegistry) Exists(_ context.Context, key StreamKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.streams[key]
	return ok, nil
}

func (r *MemoryRegistry) Create(_ context.Context, key StreamKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[key]; !ok {
		r.streams[key] = struct{}{}
		r.creates++
	}
	return nil
}

func (r *MemoryRegistry) IsDeleting(_ context.Context, key StreamKey) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.deleting[key]
	return ok, nil
}

// MarkDeleting flags key as being dropped
func (r *MemoryRegistry) MarkDeleting(key StreamKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleting[key] = struct{}{}
}

// Creates returns how many streams were actually created
func (r *MemoryRegistry) Creates() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.creates
}

func (r *MemoryRegistry) Close() error { return nil }

var _ StreamRegistry = (*MemoryRegistry)(nil)
