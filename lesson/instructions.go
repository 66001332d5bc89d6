package lesson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/sahilm/fuzzy"
)

// InstructionSpec is the resolved per-slide instruction content the
// gate consumes. Resolution is deterministic given the same raw data
// and role/letter.
type InstructionSpec struct {
	Texts    []string
	AudioURL string
}

// instructionEntry is one entry of a keyed instruction map. It accepts
// either a bare string or an object with text/audio fields.
type instructionEntry struct {
	Texts []string
	Audio string
}

func (e *instructionEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		e.Texts = []string{s}
		return nil
	}

	var obj struct {
		Text  stringList `json:"text"`
		Texts stringList `json:"texts"`
		Audio string     `json:"audio"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	e.Texts = append([]string(obj.Text), []string(obj.Texts)...)
	e.Audio = obj.Audio
	return nil
}

// stringList accepts a single string or an array of strings.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = []string{s}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// Instructions is the raw instructions field of an activity: a flat
// string, a list of strings, or a map from role-identifiers to entries.
type Instructions struct {
	flat  []string
	keyed map[string]instructionEntry
}

// UnmarshalJSON accepts every historical shape of the field.
func (in *Instructions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		in.flat = []string{s}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		in.flat = many
		return nil
	}

	var keyed map[string]instructionEntry
	if err := json.Unmarshal(data, &keyed); err != nil {
		return err
	}
	in.keyed = keyed
	return nil
}

// IsZero reports whether no instructions were declared.
func (in Instructions) IsZero() bool {
	return len(in.flat) == 0 && len(in.keyed) == 0
}

// slideIDPattern encodes the id grammar
// activity-<number>(-<letter>)?-<role>.
var slideIDPattern = regexp.MustCompile(`^activity-(\d+)(?:-([a-z]))?-([a-z][a-z-]*)$`)

// ParseSlideID re-derives number, letter and role from a slide id.
// Letter is empty for ids without the optional letter part.
func ParseSlideID(id string) (number int, letter, role string, ok bool) {
	m := slideIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, "", "", false
	}
	var n int
	if _, err := fmt.Sscanf(m[1], "%d", &n); err != nil {
		return 0, "", "", false
	}
	return n, m[2], m[3], true
}

// Resolve computes the instruction content for a slide. Flat
// instructions apply to every slide of the activity. Keyed maps are
// matched against the slide's letter and role through the historical
// key shapes, most specific first; an unrecognized key shape that only
// fuzzy matching can reach is logged as a content gap rather than
// silently extended.
func (in Instructions) Resolve(number int, letter, role string) InstructionSpec {
	if len(in.flat) > 0 {
		return InstructionSpec{Texts: in.flat}
	}
	if len(in.keyed) == 0 {
		return InstructionSpec{}
	}

	for _, key := range candidateKeys(number, letter, role) {
		if entry, ok := in.keyed[key]; ok {
			return InstructionSpec{Texts: entry.Texts, AudioURL: entry.Audio}
		}
	}

	// Last resort: fuzzy match over the declared keys. Deterministic
	// for fixed inputs, but any hit here means a key shape outside the
	// known grammar.
	keys := make([]string, 0, len(in.keyed))
	for k := range in.keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	needle := role
	if letter != "" {
		needle = letter + "-" + role
	}
	matches := fuzzy.Find(needle, keys)
	if len(matches) > 0 {
		key := matches[0].Str
		log.Warn("instruction key matched only fuzzily; unknown id shape",
			"wanted", needle, "matched", key)
		entry := in.keyed[key]
		return InstructionSpec{Texts: entry.Texts, AudioURL: entry.Audio}
	}

	return InstructionSpec{}
}

// candidateKeys lists the historical naming conventions for keyed
// instruction lookup, most specific first.
func candidateKeys(number int, letter, role string) []string {
	keys := make([]string, 0, 6)
	if letter != "" {
		keys = append(keys,
			fmt.Sprintf("activity-%d-%s-%s", number, letter, role),
			letter+"-"+role,
			role+"-"+letter,
		)
	}
	keys = append(keys,
		fmt.Sprintf("activity-%d-%s", number, role),
		role,
	)
	if letter != "" {
		keys = append(keys, letter)
	}
	return keys
}
