// Package scorm persists player position and completion state against
// a SCORM 1.2 shaped LMS session, degrading to a local store when no
// host API is present.
package scorm

// API is the narrow LMS session contract the player depends on. Init
// must be called before any other method; Save flushes pending writes
// and Quit terminates the session. Save and Quit are best-effort.
type API interface {
	Init() bool
	Get(key string) string
	Set(key, value string) error
	Save() error
	Quit() error
}

// SCORM 1.2 data model elements used by the adapter.
const (
	KeyLessonStatus   = "cmi.core.lesson_status"
	KeyLessonLocation = "cmi.core.lesson_location"
	KeySuspendData    = "cmi.suspend_data"
	KeyExit           = "cmi.core.exit"
)

// Lesson status values.
const (
	StatusIncomplete   = "incomplete"
	StatusCompleted    = "completed"
	StatusPassed       = "passed"
	StatusNotAttempted = "not attempted"
	StatusUnknown      = "unknown"
)

// Exit markers.
const (
	ExitSuspend = "suspend"
	ExitNormal  = "normal"
)
