package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/jayt-piggie/my-trip-planner/internal/domain"
	"github.com/jayt-piggie/my-trip-planner/internal/lifecycle"
	"github.com/jayt-piggie/my-trip-planner/internal/move"
	"github.com/jayt-piggie/my-trip-planner/internal/repo"
)

// ErrClosed is returned by writes on a session that has been torn down.
var ErrClosed = errors.New("session closed")

// Op names a session operation for the pending and error flags.
type Op string

const (
	OpPublish Op = "publish"
	OpRevert  Op = "revert"
	OpMove    Op = "move"
	OpShare   Op = "share"
	OpEnrich  Op = "enrich"
)

// Status is a point-in-time view of a session for the presentation layer.
type Status struct {
	Days       domain.Itinerary
	OpenDayID  string
	ReadOnly   bool
	ShareToken string
	Pending    map[Op]bool
	Errors     map[Op]string
	// Annotations holds enrichment results by kind, then day id.
	Annotations map[string]map[string]any
}

// Session is the state of one owner's (or one viewer's) visit: the cached
// itinerary, the open day and the outstanding operations.
// All methods are safe for concurrent use. The mutex is never held across
// store or enrichment I/O.
type Session struct {
	engine *Engine
	mode   domain.Mode
	owner  string // empty for viewers

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup

	mu          sync.Mutex
	days        domain.Itinerary
	snapshot    domain.Snapshot
	openID      string
	shareToken  string
	busyDays    map[string]struct{}
	opPending   map[Op]int
	opErrors    map[Op]error
	annotations map[string]map[string]any
	closed      bool
}

func newSession(e *Engine, mode domain.Mode, days domain.Itinerary, snap domain.Snapshot) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		engine:      e,
		mode:        mode,
		ctx:         ctx,
		cancel:      cancel,
		days:        days.Clone(),
		snapshot:    snap,
		busyDays:    map[string]struct{}{},
		opPending:   map[Op]int{},
		opErrors:    map[Op]error{},
		annotations: map[string]map[string]any{},
	}
	if o, ok := mode.(domain.Owner); ok {
		s.owner = o.Key
	}
	if len(s.days) > 0 {
		s.openID = s.days[0].ID
	}
	return s
}

// Day returns a copy of one cached day.
func (s *Session) Day(id string) (domain.DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.days.Find(id)
	if !ok {
		return domain.DayRecord{}, fmt.Errorf("session.Session.Day: %w: day %q", domain.ErrNotFound, id)
	}
	return d.Clone(), nil
}

// Snapshot returns the share snapshot a viewer session was opened on.
// The boolean is false for owner sessions.
func (s *Session) Snapshot() (domain.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mode.(domain.Viewer); !ok {
		return domain.Snapshot{}, false
	}
	snap := s.snapshot
	snap.Days = s.days.Clone()
	return snap, true
}

// Status returns the session's presentation state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Days:        s.days.Clone(),
		OpenDayID:   s.openID,
		ShareToken:  s.shareToken,
		Pending:     map[Op]bool{},
		Errors:      map[Op]string{},
		Annotations: make(map[string]map[string]any, len(s.annotations)),
	}
	_, st.ReadOnly = s.mode.(domain.Viewer)
	for op, n := range s.opPending {
		if n > 0 {
			st.Pending[op] = true
		}
	}
	for op, err := range s.opErrors {
		st.Errors[op] = err.Error()
	}
	for kind, byDay := range s.annotations {
		st.Annotations[kind] = maps.Clone(byDay)
	}
	return st
}

// Toggle opens the day with the given id, or closes it if it is already
// open, and returns the id of the open day ("" when none is open).
func (s *Session) Toggle(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.days.Index(id) < 0 {
		return s.openID, fmt.Errorf("session.Session.Toggle: %w: day %q", domain.ErrNotFound, id)
	}
	if s.openID == id {
		s.openID = ""
	} else {
		s.openID = id
	}
	return s.openID, nil
}

// Publish replaces the editable content of a draft day and marks it
// published. It returns the day as persisted.
func (s *Session) Publish(ctx context.Context, id string, content domain.DayContent) (domain.DayRecord, error) {
	rec, err := s.writeDay(ctx, OpPublish, id, func(d domain.DayRecord) (domain.DayRecord, error) {
		return lifecycle.Publish(d, content)
	})
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("session.Session.Publish: %w", err)
	}
	return rec, nil
}

// Revert returns a published day to draft without touching its content.
func (s *Session) Revert(ctx context.Context, id string) (domain.DayRecord, error) {
	rec, err := s.writeDay(ctx, OpRevert, id, lifecycle.Revert)
	if err != nil {
		return domain.DayRecord{}, fmt.Errorf("session.Session.Revert: %w", err)
	}
	return rec, nil
}

// writeDay runs a single-day transition: validate against the cached day,
// persist with PutOne, then apply the persisted record to the cache.
func (s *Session) writeDay(ctx context.Context, op Op, id string, transition func(domain.DayRecord) (domain.DayRecord, error)) (domain.DayRecord, error) {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return domain.DayRecord{}, err
	}
	day, ok := s.days.Find(id)
	if !ok {
		s.mu.Unlock()
		return domain.DayRecord{}, fmt.Errorf("%w: day %q", domain.ErrNotFound, id)
	}
	next, err := transition(day)
	if err != nil {
		s.mu.Unlock()
		return domain.DayRecord{}, err
	}
	if err := s.claim(op, id); err != nil {
		s.mu.Unlock()
		return domain.DayRecord{}, err
	}
	s.mu.Unlock()

	// Once issued, the write runs to completion even if the caller goes away.
	start := time.Now()
	err = s.engine.store.PutOne(context.WithoutCancel(ctx), s.owner, next)
	s.engine.metrics.ObserveStoreDuration(string(repo.OpPutOne), time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(op, err, id)
	if err != nil {
		return domain.DayRecord{}, err
	}
	if !s.closed {
		if i := s.days.Index(id); i >= 0 {
			s.days[i] = next.Clone()
		}
	}
	return next, nil
}

// Move swaps the editable content and publish flag of two days.
// It returns the two days as persisted.
func (s *Session) Move(ctx context.Context, sourceID, targetID string) ([2]domain.DayRecord, error) {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return [2]domain.DayRecord{}, fmt.Errorf("session.Session.Move: %w", err)
	}
	if _, _, err := move.Plan(s.days, sourceID, targetID); err != nil {
		s.mu.Unlock()
		return [2]domain.DayRecord{}, fmt.Errorf("session.Session.Move: %w", err)
	}
	if err := s.claim(OpMove, sourceID, targetID); err != nil {
		s.mu.Unlock()
		return [2]domain.DayRecord{}, fmt.Errorf("session.Session.Move: %w", err)
	}
	it := s.days.Clone()
	s.mu.Unlock()

	start := time.Now()
	moved, err := s.engine.moves.Move(context.WithoutCancel(ctx), s.owner, it, sourceID, targetID)
	s.engine.metrics.ObserveStoreDuration(string(repo.OpPutAll), time.Since(start))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(OpMove, err, sourceID, targetID)
	if err != nil {
		return [2]domain.DayRecord{}, fmt.Errorf("session.Session.Move: %w", err)
	}
	if !s.closed {
		for _, d := range moved {
			if i := s.days.Index(d.ID); i >= 0 {
				s.days[i] = d.Clone()
			}
		}
	}
	return moved, nil
}

// Share writes the redacted snapshot of the cached itinerary and returns
// the owner's share token.
func (s *Session) Share(ctx context.Context) (string, error) {
	s.mu.Lock()
	if err := s.writable(); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("session.Session.Share: %w", err)
	}
	if err := s.claim(OpShare); err != nil {
		s.mu.Unlock()
		return "", fmt.Errorf("session.Session.Share: %w", err)
	}
	days := s.days.Clone()
	s.mu.Unlock()

	token, err := s.engine.shares.Share(context.WithoutCancel(ctx), s.owner, days)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.release(OpShare, err)
	if err != nil {
		return "", fmt.Errorf("session.Session.Share: %w", err)
	}
	if !s.closed {
		s.shareToken = token
	}
	return token, nil
}

// writable reports whether the session accepts writes. Callers must hold s.mu.
func (s *Session) writable() error {
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.mode.(domain.Viewer); ok {
		return domain.ErrReadOnly
	}
	return nil
}

// claim marks op and the given days as in flight, failing with
// domain.ErrBusy if any of the days already has a write outstanding.
// A share, which touches no single day, is serialized with itself.
// Every successful claim must be paired with release.
// Callers must hold s.mu and have checked writable.
func (s *Session) claim(op Op, ids ...string) error {
	if len(ids) == 0 && s.opPending[op] > 0 {
		return fmt.Errorf("%w: %s already in progress", domain.ErrBusy, op)
	}
	for _, id := range ids {
		if _, busy := s.busyDays[id]; busy {
			return fmt.Errorf("%w: day %q has a write in progress", domain.ErrBusy, id)
		}
	}
	for _, id := range ids {
		s.busyDays[id] = struct{}{}
	}
	s.opPending[op]++
	s.tasks.Add(1)
	return nil
}

// release undoes claim and records the operation's outcome.
// Callers must hold s.mu.
func (s *Session) release(op Op, err error, ids ...string) {
	for _, id := range ids {
		delete(s.busyDays, id)
	}
	s.opPending[op]--
	s.tasks.Done()
	if err != nil {
		s.opErrors[op] = err
	} else {
		delete(s.opErrors, op)
	}
	s.engine.metrics.IncOperation(string(op), outcome(err))
	if err != nil {
		s.engine.log.WarnContext(s.ctx, "operation failed", "op", op, "owner", s.owner, "error", err)
	}
}

// Close tears the session down: enrichment tasks are cancelled and results
// of operations still in flight are no longer applied. It returns once
// in-flight store writes and enrichment tasks have finished. Close is
// idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.tasks.Wait()
}

// inFlight reports whether any write or enrichment task is outstanding.
func (s *Session) inFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.opPending {
		if n > 0 {
			return true
		}
	}
	return false
}
