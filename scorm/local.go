package scorm

import (
	"sync"

	"github.com/charmbracelet/log"
	"github.com/metafates/gache"
	"github.com/samber/lo"

	"github.com/clsslgtti-creator/slgti-lessons/filesystem"
)

// LocalStore persists resume state to a file on disk, keyed by lesson
// id, so the player still resumes when no LMS host is present. It
// honors the same monotonic-completion and dedup rules as the LMS
// adapter.
type LocalStore struct {
	lessonID string
	cacher   *gache.Cache[map[string]ProgressRecord]

	mu            sync.Mutex
	completed     bool
	wrote         bool
	lastIndex     int
	lastTotal     int
	lastCompleted bool
}

// NewLocalStore opens (or creates) the local progress registry at path.
func NewLocalStore(path, lessonID string) *LocalStore {
	return &LocalStore{
		lessonID: lessonID,
		cacher: gache.New[map[string]ProgressRecord](&gache.Options{
			Path:       path,
			FileSystem: &filesystem.GacheFs{},
		}),
	}
}

// ResumeIndex returns the previously stored slide index for this
// lesson, clamped into range; 0 when nothing valid is stored.
func (s *LocalStore) ResumeIndex(totalSlides int) int {
	if totalSlides <= 0 {
		return 0
	}

	records, err := s.load()
	if err != nil {
		log.Warn("local progress read failed", "err", err)
		return 0
	}
	rec, ok := records[s.lessonID]
	if !ok || rec.CurrentSlide < 0 {
		return 0
	}

	if rec.Completed {
		s.mu.Lock()
		s.completed = true
		s.mu.Unlock()
	}
	return lo.Clamp(rec.CurrentSlide, 0, totalSlides-1)
}

// RecordProgress stores the current position, skipping writes that
// repeat the last stored state.
func (s *LocalStore) RecordProgress(index, total int) error {
	s.mu.Lock()
	if s.wrote && s.lastIndex == index && s.lastTotal == total && s.lastCompleted == s.completed {
		s.mu.Unlock()
		return nil
	}
	completed := s.completed
	s.mu.Unlock()

	if err := s.write(index, total, completed); err != nil {
		return err
	}

	s.mu.Lock()
	s.wrote = true
	s.lastIndex = index
	s.lastTotal = total
	s.lastCompleted = completed
	s.mu.Unlock()
	return nil
}

// RecordCompletion marks the lesson completed; idempotent and never
// downgraded by later progress writes.
func (s *LocalStore) RecordCompletion(index, total int) error {
	s.mu.Lock()
	if s.completed {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	if err := s.write(index, total, true); err != nil {
		return err
	}

	s.mu.Lock()
	s.completed = true
	s.wrote = true
	s.lastIndex = index
	s.lastTotal = total
	s.lastCompleted = true
	s.mu.Unlock()
	return nil
}

// FlushAndDisconnect is a no-op beyond the write-through the store
// already does; it exists to satisfy the Store contract.
func (s *LocalStore) FlushAndDisconnect() {}

func (s *LocalStore) load() (map[string]ProgressRecord, error) {
	cached, expired, err := s.cacher.Get()
	if err != nil {
		return nil, err
	}
	if expired || cached == nil {
		return make(map[string]ProgressRecord), nil
	}
	return cached, nil
}

func (s *LocalStore) write(index, total int, completed bool) error {
	records, err := s.load()
	if err != nil {
		return err
	}
	records[s.lessonID] = newProgressRecord(index, total, completed)
	return s.cacher.Set(records)
}
