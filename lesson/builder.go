package lesson

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/clsslgtti-creator/slgti-lessons/player"
)

// Context supplies a builder with everything beyond the activity body:
// the raw key, declared type, parsed activity number, optional focus
// line, and the raw instructions for the gate resolver.
type Context struct {
	Key          string
	Type         string
	Number       int
	Focus        string
	Instructions Instructions
}

// Builder produces the slides for one activity. Returning nil or an
// empty slice means the activity renders as a fallback slide.
type Builder func(act Activity, ctx Context) []*player.Slide

// builders maps activity type strings to their slide builders.
// Game-engine mini-games deliberately have no entry here: they render
// as fallback slides.
var builders = map[string]Builder{
	"listen":        buildListen,
	"listen_repeat": buildListenRepeat,
	"read_along":    buildReadAlong,
	"speaking":      buildSpeaking,
}

// BuildAll expands every activity of a document into slides, in
// activity order. A failing or unsupported activity contributes its
// fallback slide; it never prevents other slides from building.
func BuildAll(doc *Document) []*player.Slide {
	var slides []*player.Slide
	for _, act := range doc.Activities {
		slides = append(slides, BuildSlides(act)...)
	}
	return slides
}

// BuildSlides expands one activity, substituting the fallback slide
// for unsupported types and malformed content.
func BuildSlides(act Activity) []*player.Slide {
	ctx := Context{
		Key:          act.Key,
		Type:         act.Type,
		Number:       act.Number,
		Focus:        act.Focus,
		Instructions: act.Instructions,
	}

	build, ok := builders[act.Type]
	if !ok {
		if act.Type != "" {
			log.Debug("unsupported activity type, using fallback", "key", act.Key, "type", act.Type)
		}
		return []*player.Slide{fallbackSlide(ctx)}
	}

	slides := build(act, ctx)
	if len(slides) == 0 {
		return []*player.Slide{fallbackSlide(ctx)}
	}

	// Activity-level instruction audio applies where the resolved
	// entry carried none of its own.
	for _, s := range slides {
		if s.InstructionAudioURL == "" {
			s.InstructionAudioURL = act.InstructionAudio
		}
	}
	return slides
}

func buildListen(act Activity, ctx Context) []*player.Slide {
	if len(act.Segments) == 0 {
		return nil
	}
	s := newSlide(ctx, "", "listening")
	s.Kind = player.KindAutoTriggerable
	s.Segments = segments(act.Segments)
	s.GapMode = player.GapListen
	s.Body = transcript(act.Segments)
	return []*player.Slide{s}
}

func buildListenRepeat(act Activity, ctx Context) []*player.Slide {
	if len(act.Segments) == 0 {
		return nil
	}

	// Slide a: listen through. Slide b: repeat practice with speaking
	// room after each line.
	a := newSlide(ctx, "a", "listening")
	a.Kind = player.KindAutoTriggerable
	a.Segments = segments(act.Segments)
	a.GapMode = player.GapListen
	a.Body = transcript(act.Segments)

	b := newSlide(ctx, "b", "speaking")
	b.Kind = player.KindAutoTriggerable
	b.Segments = segments(act.Segments)
	b.GapMode = player.GapListenRepeat
	b.Body = transcript(act.Segments)

	return []*player.Slide{a, b}
}

func buildReadAlong(act Activity, ctx Context) []*player.Slide {
	if len(act.Segments) == 0 {
		return nil
	}
	s := newSlide(ctx, "", "reading")
	s.Kind = player.KindAutoTriggerable
	s.Segments = segments(act.Segments)
	s.GapMode = player.GapRead
	s.Body = transcript(act.Segments)
	return []*player.Slide{s}
}

func buildSpeaking(act Activity, ctx Context) []*player.Slide {
	if len(act.Segments) == 0 {
		return nil
	}

	specs := act.Segments
	if act.Shuffle {
		// Shuffling lives here, never in the gap policy.
		specs = append([]SegmentSpec(nil), specs...)
		rand.Shuffle(len(specs), func(i, j int) {
			specs[i], specs[j] = specs[j], specs[i]
		})
	}

	s := newSlide(ctx, "", "speaking")
	s.Kind = player.KindManual
	s.Segments = segments(specs)
	s.GapMode = player.GapListenRepeat
	s.Body = transcript(specs)
	return []*player.Slide{s}
}

// fallbackSlide renders for unsupported types and malformed activities
// so the rest of the lesson survives.
func fallbackSlide(ctx Context) *player.Slide {
	s := newSlide(ctx, "", "unsupported")
	s.Kind = player.KindManual
	s.Body = "This activity is not available yet."
	return s
}

// newSlide assembles the common slide fields and resolves instructions
// from the slide's own id parts.
func newSlide(ctx Context, letter, role string) *player.Slide {
	id := slideID(ctx.Number, letter, role)
	spec := ctx.Instructions.Resolve(ctx.Number, letter, role)

	return &player.Slide{
		ID:                  id,
		Title:               ctx.Focus,
		InstructionTexts:    spec.Texts,
		InstructionAudioURL: spec.AudioURL,
	}
}

func slideID(number int, letter, role string) string {
	if letter != "" {
		return fmt.Sprintf("activity-%d-%s-%s", number, letter, role)
	}
	return fmt.Sprintf("activity-%d-%s", number, role)
}

func segments(specs []SegmentSpec) []player.Segment {
	out := make([]player.Segment, 0, len(specs))
	for _, spec := range specs {
		label := spec.Text
		if spec.Speaker != "" {
			label = spec.Speaker + ": " + spec.Text
		}
		out = append(out, player.Segment{URL: spec.Audio, Label: label})
	}
	return out
}

func transcript(specs []SegmentSpec) string {
	var b strings.Builder
	for _, spec := range specs {
		if spec.Speaker != "" {
			b.WriteString(spec.Speaker)
			b.WriteString(": ")
		}
		b.WriteString(spec.Text)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
