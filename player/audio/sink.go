package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Sink renders a clip to an output device, blocking until the clip
// ends or ctx is cancelled. Cancellation is not an error.
type Sink interface {
	Play(ctx context.Context, clip *Clip) error
}

// OtoSink plays clips through the platform audio device via oto. The
// oto context is created lazily on first use with the first clip's
// format and shared for the life of the process.
type OtoSink struct {
	mu      sync.Mutex
	context *oto.Context
	ready   bool
}

// NewOtoSink creates an uninitialized device sink.
func NewOtoSink() *OtoSink {
	return &OtoSink{}
}

// Play renders the clip's PCM payload, polling the device player until
// it drains or ctx fires. On cancellation playback is paused and the
// player torn down so nothing keeps sounding after the caller moved on.
func (s *OtoSink) Play(ctx context.Context, clip *Clip) error {
	if clip == nil || len(clip.PCM) == 0 {
		return errors.New("empty clip")
	}
	if err := s.init(clip.SampleRate, clip.Channels); err != nil {
		return err
	}

	p := s.context.NewPlayer(bytes.NewReader(clip.PCM))
	defer p.Close() //nolint:errcheck
	p.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.Pause()
			return nil
		case <-ticker.C:
			if !p.IsPlaying() {
				return nil
			}
		}
	}
}

func (s *OtoSink) init(sampleRate, channels int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready {
		return nil
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if channels <= 0 {
		channels = DefaultChannels
	}

	options := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	}

	context, readyChan, err := oto.NewContext(options)
	if err != nil {
		return fmt.Errorf("failed to create audio context: %w", err)
	}
	<-readyChan

	s.context = context
	s.ready = true
	return nil
}
