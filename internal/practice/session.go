// Package practice owns the problem selection and editing session.
package practice

import (
	"sort"
	"sync"
	"time"

	"github.com/verte-zerg/jsoj/internal/api"
	"github.com/verte-zerg/jsoj/internal/daily"
	"github.com/verte-zerg/jsoj/internal/draft"
	"github.com/verte-zerg/jsoj/internal/judge"
	"github.com/verte-zerg/jsoj/internal/localstore"
	"github.com/verte-zerg/jsoj/internal/model"
	"github.com/verte-zerg/jsoj/internal/review"
)

// LastProblemKey stores the id of the last visited problem.
const LastProblemKey = "js-oj:lastProblemId"

// DefaultAutosave is the idle delay before the buffer is saved as a draft.
const DefaultAutosave = 500 * time.Millisecond

// Config wires a Session. Store is required; the other fields default to
// components built on Store.
type Config struct {
	Store     *localstore.Adapter
	Drafts    *draft.Cache
	Queue     *review.Queue
	Attempts  *daily.AttemptLog
	Judge     Judge
	Scheduler Scheduler
	Autosave  time.Duration
	Timeout   time.Duration
}

// Snapshot is an immutable view of the session.
type Snapshot struct {
	// Version increases with every published change.
	Version     uint64
	Problems    []model.Problem
	Index       int
	Current     *model.Problem
	Code        string
	Records     map[string]model.Record
	Judging     bool
	Result      *model.JudgeResult
	TestResults []model.TestResult
	Notice      string
	InReview    bool
	TodayCount  int
}

// Session tracks the problem list, the selected problem and its buffer.
type Session struct {
	mu       sync.Mutex
	store    *localstore.Adapter
	drafts   *draft.Cache
	queue    *review.Queue
	attempts *daily.AttemptLog
	client   Judge
	sched    Scheduler
	autosave time.Duration
	timeout  time.Duration

	problems []model.Problem
	index    int
	current  *model.Problem
	code     string
	records  map[string]model.Record
	judge    judge.State
	notice   string
	version  uint64

	// selection changes whenever the current problem does.
	selection uint64
	// runs counts started backend actions.
	runs uint64

	timer   Timer
	saveGen uint64

	subMu     sync.Mutex
	deliverMu sync.Mutex
	subs      map[int]func(Snapshot)
	nextSub   int
	delivered uint64
}

// New returns a session with no problems loaded.
func New(cfg Config) *Session {
	s := &Session{
		store:    cfg.Store,
		drafts:   cfg.Drafts,
		queue:    cfg.Queue,
		attempts: cfg.Attempts,
		client:   cfg.Judge,
		sched:    cfg.Scheduler,
		autosave: cfg.Autosave,
		timeout:  cfg.Timeout,
		index:    -1,
		records:  map[string]model.Record{},
		subs:     map[int]func(Snapshot){},
	}
	if s.store == nil {
		s.store = localstore.New(nil)
	}
	if s.drafts == nil {
		s.drafts = draft.New(s.store)
	}
	if s.queue == nil {
		s.queue = review.New(s.store)
	}
	if s.attempts == nil {
		s.attempts = daily.New(s.store)
	}
	if s.sched == nil {
		s.sched = ClockScheduler()
	}
	if s.autosave <= 0 {
		s.autosave = DefaultAutosave
	}
	if s.timeout <= 0 {
		s.timeout = api.DefaultTimeout
	}
	s.judge.Clear()
	return s
}

// Drafts returns the draft cache used by the session.
func (s *Session) Drafts() *draft.Cache { return s.drafts }

// Queue returns the review queue used by the session.
func (s *Session) Queue() *review.Queue { return s.queue }

// Attempts returns the daily attempt log used by the session.
func (s *Session) Attempts() *daily.AttemptLog { return s.attempts }

// LoadProblems replaces the problem list and restores the last visited
// problem when it is still listed.
func (s *Session) LoadProblems(list []model.Problem) {
	s.mu.Lock()
	s.loadLocked(list)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *Session) loadLocked(list []model.Problem) {
	s.flushLocked()
	s.problems = append([]model.Problem(nil), list...)
	s.index = -1
	s.current = nil
	s.code = ""
	if len(s.problems) > 0 {
		index := 0
		if id, ok := s.store.Read(LastProblemKey); ok {
			if i := s.indexOf(id); i >= 0 {
				index = i
			}
		}
		s.enterLocked(index)
	}
	s.selection++
	s.judge.Clear()
	s.judge.SetJudging(false)
}

// SelectProblem switches to the problem at index. An out of range index is
// ignored and reported as false.
func (s *Session) SelectProblem(index int) bool {
	s.mu.Lock()
	if index < 0 || index >= len(s.problems) {
		s.mu.Unlock()
		return false
	}
	s.flushLocked()
	s.enterLocked(index)
	s.store.Write(LastProblemKey, s.current.ID)
	s.selection++
	s.judge.Clear()
	s.judge.SetJudging(false)
	s.notice = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return true
}

// SelectByID switches to the problem with id.
func (s *Session) SelectByID(id string) bool {
	s.mu.Lock()
	index := s.indexOf(id)
	s.mu.Unlock()
	if index < 0 {
		return false
	}
	return s.SelectProblem(index)
}

// SetUserCode replaces the buffer and schedules an autosave.
func (s *Session) SetUserCode(text string) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.code = text
	s.scheduleAutosaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// ResetCode restores the template of the current problem.
func (s *Session) ResetCode() {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.code = s.current.Template
	s.judge.Clear()
	s.notice = ""
	s.scheduleAutosaveLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// SetRecords replaces every per-problem record.
func (s *Session) SetRecords(records map[string]model.Record) {
	s.mu.Lock()
	s.records = copyRecords(records)
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// UpdateRecord replaces the record of one problem.
func (s *Session) UpdateRecord(problemID string, record model.Record) {
	s.mu.Lock()
	s.records[problemID] = record
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every change. Stale
// snapshots are dropped, so fn only ever sees newer versions. fn must not
// call back into the session.
func (s *Session) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

// Close saves the buffer immediately and cancels the pending autosave.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushLocked()
}

func (s *Session) enterLocked(index int) {
	problem := s.problems[index]
	s.index = index
	s.current = &problem
	if text, ok := s.drafts.Get(problem.ID); ok {
		s.code = text
	} else {
		s.code = problem.Template
	}
}

// flushLocked cancels the pending autosave and saves the buffer now.
func (s *Session) flushLocked() {
	s.cancelAutosaveLocked()
	if s.current != nil {
		s.drafts.Save(s.current.ID, s.code)
	}
}

func (s *Session) scheduleAutosaveLocked() {
	s.cancelAutosaveLocked()
	gen := s.saveGen
	id := s.current.ID
	s.timer = s.sched.AfterFunc(s.autosave, func() {
		s.autosaveFired(gen, id)
	})
}

// cancelAutosaveLocked also invalidates a timer that already fired but is
// still waiting for the lock.
func (s *Session) cancelAutosaveLocked() {
	s.saveGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) autosaveFired(gen uint64, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.saveGen || s.current == nil || s.current.ID != id {
		return
	}
	s.timer = nil
	s.drafts.Save(id, s.code)
}

func (s *Session) indexOf(id string) int {
	for i, p := range s.problems {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (s *Session) snapshotLocked() Snapshot {
	s.version++
	snap := Snapshot{
		Version:     s.version,
		Problems:    s.problems,
		Index:       s.index,
		Code:        s.code,
		Records:     copyRecords(s.records),
		Judging:     s.judge.Judging(),
		Result:      s.judge.Result(),
		TestResults: s.judge.TestResults(),
		Notice:      s.notice,
		TodayCount:  s.attempts.CountToday(model.KindCode),
	}
	if s.current != nil {
		current := *s.current
		snap.Current = &current
		snap.InReview = s.queue.Contains(model.KindCode, current.ID)
	}
	return snap
}

func (s *Session) publish(snap Snapshot) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version

	s.subMu.Lock()
	ids := make([]int, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(Snapshot), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func copyRecords(records map[string]model.Record) map[string]model.Record {
	out := make(map[string]model.Record, len(records))
	for id, r := range records {
		out[id] = r
	}
	return out
}
