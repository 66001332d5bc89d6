// Package audio implements the audio segment player: single-URL
// playback with cooperative cancellation, duration probing, a
// URL-keyed clip cache and a registry of active instances so StopAll
// can halt everything at once.
package audio

import (
	"encoding/binary"
	"time"
)

// Clip is a decoded audio resource cached per URL for the lifetime of
// the process.
type Clip struct {
	URL        string
	PCM        []byte // Signed 16-bit little-endian samples
	SampleRate int
	Channels   int
	Duration   time.Duration // 0 when unknown
}

// Fallback format for clips whose header could not be parsed.
const (
	DefaultSampleRate = 22050
	DefaultChannels   = 1
	bytesPerSample    = 2
)

// parseClip interprets raw bytes as a RIFF/WAVE file and extracts the
// PCM payload and measured duration. Anything that is not a parseable
// 16-bit PCM WAV degrades to an unknown-duration clip around the raw
// bytes rather than an error: a broken clip skips, it never aborts a
// sequence.
func parseClip(url string, raw []byte) *Clip {
	clip := &Clip{
		URL:        url,
		PCM:        raw,
		SampleRate: DefaultSampleRate,
		Channels:   DefaultChannels,
	}

	if len(raw) < 12 || string(raw[0:4]) != "RIFF" || string(raw[8:12]) != "WAVE" {
		return clip
	}

	var (
		sampleRate    int
		channels      int
		bitsPerSample int
		data          []byte
	)

	// Walk the RIFF chunks for "fmt " and "data".
	off := 12
	for off+8 <= len(raw) {
		id := string(raw[off : off+4])
		size := int(binary.LittleEndian.Uint32(raw[off+4 : off+8]))
		body := off + 8
		if size < 0 || body+size > len(raw) {
			break
		}

		switch id {
		case "fmt ":
			if size >= 16 {
				channels = int(binary.LittleEndian.Uint16(raw[body+2 : body+4]))
				sampleRate = int(binary.LittleEndian.Uint32(raw[body+4 : body+8]))
				bitsPerSample = int(binary.LittleEndian.Uint16(raw[body+14 : body+16]))
			}
		case "data":
			data = raw[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size
		if size%2 == 1 {
			off++
		}
	}

	if sampleRate <= 0 || channels <= 0 || bitsPerSample != 16 || len(data) == 0 {
		return clip
	}

	clip.PCM = data
	clip.SampleRate = sampleRate
	clip.Channels = channels

	frames := len(data) / (channels * bytesPerSample)
	clip.Duration = time.Duration(frames) * time.Second / time.Duration(sampleRate)
	return clip
}
