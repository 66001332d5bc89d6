package scorm

import (
	"encoding/json"
	"time"
)

// ProgressRecord is the suspend-data payload. It is overwritten on
// every slide transition and read once at lesson load to compute the
// resume index. Completed is monotonic: once true it is never written
// back to false within a session.
type ProgressRecord struct {
	CurrentSlide int    `json:"currentSlide"`
	TotalSlides  *int   `json:"totalSlides"`
	Completed    bool   `json:"completed"`
	Timestamp    string `json:"timestamp"`
}

// newProgressRecord builds a record for the given position, stamped
// with the current time in ISO-8601.
func newProgressRecord(index, total int, completed bool) ProgressRecord {
	rec := ProgressRecord{
		CurrentSlide: index,
		Completed:    completed,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	if total > 0 {
		rec.TotalSlides = &total
	}
	return rec
}

// encode serializes the record for the suspend-data field.
func (r ProgressRecord) encode() string {
	b, err := json.Marshal(r)
	if err != nil {
		return ""
	}
	return string(b)
}

// decodeProgressRecord parses a suspend-data value. It returns false
// for empty or malformed payloads.
func decodeProgressRecord(raw string) (ProgressRecord, bool) {
	if raw == "" {
		return ProgressRecord{}, false
	}
	var rec ProgressRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return ProgressRecord{}, false
	}
	return rec, true
}
