package scorm

import (
	"strconv"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/samber/lo"
)

// Store is what the rest of the player sees: position/completion
// persistence with resume support. Adapter implements it against an
// LMS session, LocalStore against a file on disk.
type Store interface {
	ResumeIndex(totalSlides int) int
	RecordProgress(index, total int) error
	RecordCompletion(index, total int) error
	FlushAndDisconnect()
}

// Adapter bridges the navigator to an LMS session. Connection happens
// at most once per process; redundant position writes are deduplicated;
// completion, once recorded, is never downgraded.
type Adapter struct {
	api API

	mu          sync.Mutex
	connectOnce sync.Once
	connected   bool
	completed   bool
	flushed     bool

	// Last successfully written position, for write dedup.
	wrote         bool
	lastIndex     int
	lastTotal     int
	lastCompleted bool
}

// NewAdapter wraps an LMS session API. A nil api yields an adapter
// that never connects.
func NewAdapter(api API) *Adapter {
	return &Adapter{api: api}
}

// Connect attempts LMS session initialization exactly once; subsequent
// calls return the cached result without re-attempting.
func (a *Adapter) Connect() bool {
	a.connectOnce.Do(func() {
		if a.api == nil {
			log.Debug("no LMS host API, running local-only")
			return
		}
		a.mu.Lock()
		a.connected = a.api.Init()
		a.mu.Unlock()
		if !a.connected {
			log.Warn("LMS session initialization refused")
		}
	})
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.connected
}

// ResumeIndex reads the prior position: the structured lesson-location
// field first, the suspend-data record as fallback, clamped into
// [0, totalSlides-1]. It returns 0 when unconnected, when totalSlides
// is not positive, or when no valid prior position exists. It also
// latches a previously recorded completion so later writes preserve it.
func (a *Adapter) ResumeIndex(totalSlides int) int {
	if !a.Connect() || totalSlides <= 0 {
		return 0
	}

	status := a.api.Get(KeyLessonStatus)
	if status == StatusCompleted || status == StatusPassed {
		a.mu.Lock()
		a.completed = true
		a.mu.Unlock()
	}

	if loc := a.api.Get(KeyLessonLocation); loc != "" {
		if idx, err := strconv.Atoi(loc); err == nil && idx >= 0 {
			return lo.Clamp(idx, 0, totalSlides-1)
		}
	}

	if rec, ok := decodeProgressRecord(a.api.Get(KeySuspendData)); ok && rec.CurrentSlide >= 0 {
		return lo.Clamp(rec.CurrentSlide, 0, totalSlides-1)
	}

	return 0
}

// RecordProgress writes the current position. A repeat of the last
// written (index, total) pair with unchanged completion status is
// skipped to avoid needless LMS I/O. Status stays "incomplete" and the
// exit marker "suspend" until completion is recorded; writes after
// completion keep the stored position current without downgrading the
// completed status.
func (a *Adapter) RecordProgress(index, total int) error {
	if !a.Connect() {
		return nil
	}

	a.mu.Lock()
	if a.wrote && a.lastIndex == index && a.lastTotal == total && a.lastCompleted == a.completed {
		a.mu.Unlock()
		return nil
	}
	completed := a.completed
	a.mu.Unlock()

	if err := a.write(index, total, completed, false); err != nil {
		return err
	}

	a.mu.Lock()
	a.wrote = true
	a.lastIndex = index
	a.lastTotal = total
	a.lastCompleted = completed
	a.mu.Unlock()
	return nil
}

// RecordCompletion writes terminal lesson status. It is idempotent
// after the first success and is never un-recorded.
func (a *Adapter) RecordCompletion(index, total int) error {
	if !a.Connect() {
		return nil
	}

	a.mu.Lock()
	if a.completed {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	if err := a.write(index, total, true, true); err != nil {
		return err
	}

	a.mu.Lock()
	a.completed = true
	a.wrote = true
	a.lastIndex = index
	a.lastTotal = total
	a.lastCompleted = true
	a.mu.Unlock()
	return nil
}

// FlushAndDisconnect performs a best-effort save and session
// termination. This is the one place errors are deliberately
// discarded: after teardown there is no way to retry.
func (a *Adapter) FlushAndDisconnect() {
	a.mu.Lock()
	if a.flushed || !a.connected {
		a.flushed = true
		a.mu.Unlock()
		return
	}
	a.flushed = true
	a.mu.Unlock()

	_ = a.api.Save()
	_ = a.api.Quit()
}

// write pushes one coherent position/status snapshot and flushes it.
func (a *Adapter) write(index, total int, completed, terminal bool) error {
	if err := a.api.Set(KeyLessonLocation, strconv.Itoa(index)); err != nil {
		return err
	}
	if err := a.api.Set(KeySuspendData, newProgressRecord(index, total, completed).encode()); err != nil {
		return err
	}

	status := StatusIncomplete
	exit := ExitSuspend
	if completed {
		status = StatusCompleted
	}
	if terminal {
		exit = ExitNormal
	}
	if err := a.api.Set(KeyLessonStatus, status); err != nil {
		return err
	}
	if err := a.api.Set(KeyExit, exit); err != nil {
		return err
	}
	return a.api.Save()
}
