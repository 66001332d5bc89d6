// Package lesson models the lesson content document, resolves
// per-slide instructions, and builds the slide set the navigator
// consumes.
package lesson

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const activityKeyPrefix = "activity_"

var validate = validator.New()

// Common errors for lesson content handling.
var (
	ErrMalformedDocument = errors.New("malformed lesson document")
	ErrNoActivities      = errors.New("lesson document contains no activities")
)

// Meta describes the lesson as a whole.
type Meta struct {
	Lesson  int    `json:"lesson" validate:"min=0"`
	Section string `json:"section"`
	Level   string `json:"level"`
	Focus   string `json:"focus"`
	Author  string `json:"author"`
}

// SegmentSpec is one audio line inside an activity.
type SegmentSpec struct {
	Audio   string `json:"audio"`
	Text    string `json:"text"`
	Speaker string `json:"speaker,omitempty"`
}

// Activity is one named content block of the lesson. Type-specific
// fields beyond the common set stay in Extra for builders that need
// them.
type Activity struct {
	Key    string `json:"-"`
	Number int    `json:"-"`

	Type             string        `json:"type" validate:"required"`
	Focus            string        `json:"focus,omitempty"`
	Instructions     Instructions  `json:"instructions,omitempty"`
	InstructionAudio string        `json:"instruction_audio,omitempty"`
	Segments         []SegmentSpec `json:"segments,omitempty"`
	Shuffle          bool          `json:"shuffle,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Document is a parsed lesson: meta plus activities ordered by the
// numeric sort of their activity_N keys.
type Document struct {
	Meta       Meta
	Activities []Activity
}

// ID derives a stable identifier for the lesson, used to key the local
// progress store.
func (d *Document) ID() string {
	id := fmt.Sprintf("lesson-%d", d.Meta.Lesson)
	if d.Meta.Section != "" {
		id += "-" + strings.ToLower(d.Meta.Section)
	}
	return id
}

// Parse decodes a lesson document from JSON. Individual malformed
// activities are kept (they render as fallback slides later); only a
// document that cannot be decoded at all is an error.
func Parse(data []byte) (*Document, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	doc := &Document{}
	if metaRaw, ok := raw["meta"]; ok {
		if err := json.Unmarshal(metaRaw, &doc.Meta); err != nil {
			return nil, fmt.Errorf("%w: meta: %v", ErrMalformedDocument, err)
		}
	}
	if err := validate.Struct(doc.Meta); err != nil {
		return nil, fmt.Errorf("%w: meta: %v", ErrMalformedDocument, err)
	}

	for key, body := range raw {
		if !strings.HasPrefix(key, activityKeyPrefix) {
			continue
		}
		num, err := strconv.Atoi(strings.TrimPrefix(key, activityKeyPrefix))
		if err != nil {
			continue
		}

		act := Activity{Key: key, Number: num}
		if err := json.Unmarshal(body, &act); err != nil {
			// Keep the placeholder so the lesson still renders a
			// fallback slide in the right position.
			act.Type = ""
		} else {
			act.Extra = extraFields(body)
		}
		doc.Activities = append(doc.Activities, act)
	}

	if len(doc.Activities) == 0 {
		return nil, ErrNoActivities
	}

	sort.Slice(doc.Activities, func(i, j int) bool {
		return doc.Activities[i].Number < doc.Activities[j].Number
	})
	return doc, nil
}

// extraFields collects type-specific fields the common Activity shape
// does not cover.
func extraFields(body []byte) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(body, &all); err != nil {
		return nil
	}
	for _, known := range []string{"type", "focus", "instructions", "instruction_audio", "segments", "shuffle"} {
		delete(all, known)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}
