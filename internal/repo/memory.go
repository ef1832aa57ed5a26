package repo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
)

// Op names a Store operation for fault injection on a MemoryStore.
type Op string

const (
	OpGetAll        Op = "GetAll"
	OpPutAll        Op = "PutAll"
	OpGetOne        Op = "GetOne"
	OpPutOne        Op = "PutOne"
	OpGetSnapshot   Op = "GetSnapshot"
	OpPutSnapshot   Op = "PutSnapshot"
	OpGetShareToken Op = "GetShareToken"
	OpSetShareToken Op = "SetShareToken"
)

// fault is a one-shot failure armed for the next call of an operation.
// partial is the number of PutAll records written before failing; it only
// has an effect when the store is not atomic.
type fault struct {
	err     error
	partial int
}

// MemoryStore is an in-process Store. Records are copied on the way in and
// out so callers never share memory with the store.
// It is used with STORE=memory for local development and by tests, which can
// arm one-shot faults to simulate a failing backend.
type MemoryStore struct {
	mu        sync.Mutex
	days      map[string]map[string]domain.DayRecord
	snapshots map[string]memSnapshot
	tokens    map[string]string
	faults    map[Op]fault
	nonAtomic bool
	calls     map[Op]int
}

type memSnapshot struct {
	owner string
	snap  domain.Snapshot
}

// NewMemoryStore returns an empty MemoryStore with atomic batches.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days:      map[string]map[string]domain.DayRecord{},
		snapshots: map[string]memSnapshot{},
		tokens:    map[string]string{},
		faults:    map[Op]fault{},
		calls:     map[Op]int{},
	}
}

// FailNext arms a one-shot failure: the next call of op returns err wrapped
// in domain.ErrTransport and has no effect.
func (s *MemoryStore) FailNext(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = fault{err: err}
}

// FailPutAllAfter arms a one-shot PutAll failure that, on a non-atomic
// store, writes the first n records before failing.
func (s *MemoryStore) FailPutAllAfter(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[OpPutAll] = fault{err: err, partial: n}
}

// SetAtomicBatch controls what AtomicBatch reports and whether a failing
// PutAll may leave part of its batch written.
func (s *MemoryStore) SetAtomicBatch(atomic bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonAtomic = !atomic
}

// Calls returns how many times op has been invoked, including failed calls.
func (s *MemoryStore) Calls(op Op) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// AtomicBatch reports whether PutAll is all-or-nothing.
func (s *MemoryStore) AtomicBatch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.nonAtomic
}

// enter records the call and consumes an armed fault, if any.
// Callers must hold s.mu.
func (s *MemoryStore) enter(ctx context.Context, op Op) (fault, bool, error) {
	s.calls[op]++
	if err := ctx.Err(); err != nil {
		return fault{}, false, fmt.Errorf("%w: %w", domain.ErrTransport, err)
	}
	f, ok := s.faults[op]
	if ok {
		delete(s.faults, op)
	}
	return f, ok, nil
}

func (s *MemoryStore) GetAll(ctx context.Context, owner string) ([]domain.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpGetAll); err != nil || failed {
		return nil, memError("GetAll", f.err, err)
	}

	it := domain.Itinerary{}
	for _, d := range s.days[owner] {
		it = append(it, d.Clone())
	}
	it.SortByDate()
	return it, nil
}

func (s *MemoryStore) PutAll(ctx context.Context, owner string, records []domain.DayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, failed, err := s.enter(ctx, OpPutAll)
	if err != nil {
		return memError("PutAll", nil, err)
	}

	if failed {
		if s.nonAtomic {
			s.write(owner, records[:min(f.partial, len(records))])
		}
		return memError("PutAll", f.err, nil)
	}
	s.write(owner, records)
	return nil
}

func (s *MemoryStore) write(owner string, records []domain.DayRecord) {
	if s.days[owner] == nil {
		s.days[owner] = map[string]domain.DayRecord{}
	}
	for _, d := range records {
		s.days[owner][d.ID] = d.Clone()
	}
}

func (s *MemoryStore) GetOne(ctx context.Context, owner, id string) (domain.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpGetOne); err != nil || failed {
		return domain.DayRecord{}, memError("GetOne", f.err, err)
	}

	d, ok := s.days[owner][id]
	if !ok {
		return domain.DayRecord{}, fmt.Errorf("repo.MemoryStore.GetOne: %w", domain.ErrNotFound)
	}
	return d.Clone(), nil
}

func (s *MemoryStore) PutOne(ctx context.Context, owner string, record domain.DayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpPutOne); err != nil || failed {
		return memError("PutOne", f.err, err)
	}

	existing, ok := s.days[owner][record.ID]
	if !ok {
		return fmt.Errorf("repo.MemoryStore.PutOne: %w", domain.ErrNotFound)
	}
	// Identity fields are fixed at seed time.
	record.Date = existing.Date
	record.DayOfWeek = existing.DayOfWeek
	s.days[owner][record.ID] = record.Clone()
	return nil
}

func (s *MemoryStore) GetSnapshot(ctx context.Context, token string) (domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpGetSnapshot); err != nil || failed {
		return domain.Snapshot{}, memError("GetSnapshot", f.err, err)
	}

	m, ok := s.snapshots[token]
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("repo.MemoryStore.GetSnapshot: %w", domain.ErrNotFound)
	}
	snap := m.snap
	snap.Days = m.snap.Days.Clone()
	return snap, nil
}

func (s *MemoryStore) PutSnapshot(ctx context.Context, owner, token string, days []domain.DayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpPutSnapshot); err != nil || failed {
		return memError("PutSnapshot", f.err, err)
	}

	if m, ok := s.snapshots[token]; ok && m.owner != owner {
		return fmt.Errorf("repo.MemoryStore.PutSnapshot: %w: token owned by another owner", domain.ErrValidation)
	}
	s.snapshots[token] = memSnapshot{
		owner: owner,
		snap: domain.Snapshot{
			Token:     token,
			Days:      domain.Itinerary(days).Clone(),
			UpdatedAt: time.Now().UTC(),
		},
	}
	return nil
}

func (s *MemoryStore) GetShareToken(ctx context.Context, owner string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpGetShareToken); err != nil || failed {
		return "", memError("GetShareToken", f.err, err)
	}

	token, ok := s.tokens[owner]
	if !ok {
		return "", fmt.Errorf("repo.MemoryStore.GetShareToken: %w", domain.ErrNotFound)
	}
	return token, nil
}

func (s *MemoryStore) SetShareToken(ctx context.Context, owner, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, failed, err := s.enter(ctx, OpSetShareToken); err != nil || failed {
		return memError("SetShareToken", f.err, err)
	}

	s.tokens[owner] = token
	return nil
}

// memError wraps an injected fault or a context error as a transport failure.
func memError(method string, injected, ctxErr error) error {
	if ctxErr != nil {
		return fmt.Errorf("repo.MemoryStore.%s: %w", method, ctxErr)
	}
	if injected == nil {
		injected = errors.New("injected fault")
	}
	return fmt.Errorf("repo.MemoryStore.%s: %w: %w", method, domain.ErrTransport, injected)
}
