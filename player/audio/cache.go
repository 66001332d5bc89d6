package audio

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zstd"
)

// clipCache keeps decoded clips per URL for the lifetime of the
// process, with an optional zstd-compressed disk level so repeated runs
// of the same lesson do not re-fetch audio.
type clipCache struct {
	mu    sync.RWMutex
	clips map[string]*Clip

	dir     string // empty disables the disk level
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newClipCache(dir string) *clipCache {
	c := &clipCache{
		clips: make(map[string]*Clip),
		dir:   dir,
	}
	if dir == "" {
		return c
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Warn("clip cache directory unavailable, memory only", "dir", dir, "err", err)
		c.dir = ""
		return c
	}

	var err error
	c.encoder, err = zstd.NewWriter(nil)
	if err == nil {
		c.decoder, err = zstd.NewReader(nil)
	}
	if err != nil {
		log.Warn("zstd unavailable, memory-only clip cache", "err", err)
		c.dir = ""
	}
	return c
}

// get returns the cached clip for url, consulting memory first and the
// disk level second.
func (c *clipCache) get(url string) (*Clip, bool) {
	c.mu.RLock()
	clip, ok := c.clips[url]
	c.mu.RUnlock()
	if ok {
		return clip, true
	}

	if c.dir == "" {
		return nil, false
	}
	raw, err := os.ReadFile(c.path(url))
	if err != nil {
		return nil, false
	}
	decoded, err := c.decoder.DecodeAll(raw, nil)
	if err != nil {
		// A corrupt spill entry is treated as a miss.
		_ = os.Remove(c.path(url))
		return nil, false
	}

	clip = parseClip(url, decoded)
	c.mu.Lock()
	c.clips[url] = clip
	c.mu.Unlock()
	return clip, true
}

// put stores the raw clip bytes under url and returns the parsed clip.
func (c *clipCache) put(url string, raw []byte) *Clip {
	clip := parseClip(url, raw)

	c.mu.Lock()
	c.clips[url] = clip
	c.mu.Unlock()

	if c.dir != "" {
		compressed := c.encoder.EncodeAll(raw, nil)
		if err := os.WriteFile(c.path(url), compressed, 0o644); err != nil {
			log.Warn("clip cache write failed", "url", url, "err", err)
		} else {
			log.Debug("clip cached",
				"url", url,
				"raw", humanize.Bytes(uint64(len(raw))),
				"compressed", humanize.Bytes(uint64(len(compressed))))
		}
	}
	return clip
}

func (c *clipCache) path(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".zst")
}
