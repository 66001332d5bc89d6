package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"
)

// Config holds segment player configuration.
type Config struct {
	// CacheDir enables the on-disk clip cache when non-empty.
	CacheDir string `yaml:"cache_dir" env:"SLGTI_AUDIO_CACHE_DIR"`

	// FetchTimeout bounds a single clip download.
	FetchTimeout time.Duration `yaml:"fetch_timeout" env:"SLGTI_AUDIO_FETCH_TIMEOUT" envDefault:"15s"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{FetchTimeout: 15 * time.Second}
}

// Player is the audio primitive every sequencing routine is built on.
// It caches clips per URL, tracks active playback instances in a
// registry so StopAll can halt them, and treats clip failures as soft
// ends so sequencing loops degrade gracefully.
type Player struct {
	sink   Sink
	cache  *clipCache
	client *http.Client
	cfg    Config

	mu     sync.Mutex
	active map[uint64]context.CancelFunc
	nextID uint64
}

// NewPlayer creates a segment player on the given output sink.
func NewPlayer(sink Sink, cfg Config) *Player {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultConfig().FetchTimeout
	}
	return &Player{
		sink:   sink,
		cache:  newClipCache(cfg.CacheDir),
		client: &http.Client{Timeout: cfg.FetchTimeout},
		cfg:    cfg,
		active: make(map[uint64]context.CancelFunc),
	}
}

// Play plays the clip at url until it ends naturally, fails, or ctx is
// cancelled. Load and playback errors are soft ends: they are logged
// and absorbed so a broken clip skips rather than aborting the whole
// sequence. Only caller misuse is reported as an error.
func (p *Player) Play(ctx context.Context, url string) error {
	if ctx == nil {
		return errors.New("nil context")
	}
	if url == "" {
		return nil
	}

	clip, err := p.clip(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		log.Warn("clip load failed, soft end", "url", url, "err", err)
		return nil
	}

	playCtx, cancel := context.WithCancel(ctx)
	id := p.register(cancel)

	err = p.sink.Play(playCtx, clip)

	// The instance leaves the registry before control returns to the
	// caller: a callback that starts new playback must never observe
	// the finished instance.
	p.unregister(id)
	cancel()

	if err != nil && playCtx.Err() == nil {
		log.Warn("clip playback failed, soft end", "url", url, "err", err)
	}
	return nil
}

// Duration reports the measured clip length, loading the clip if it is
// not cached yet. Unknown or unloadable clips report 0.
func (p *Player) Duration(url string) time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.FetchTimeout)
	defer cancel()

	clip, err := p.clip(ctx, url)
	if err != nil {
		return 0
	}
	return clip.Duration
}

// StopAll forcibly halts every active playback instance.
func (p *Player) StopAll() {
	p.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(p.active))
	for id, cancel := range p.active {
		cancels = append(cancels, cancel)
		delete(p.active, id)
	}
	p.mu.Unlock()

	// Cancel outside the lock: a playback unwinding right now may race
	// its own unregister.
	for _, cancel := range cancels {
		cancel()
	}
}

// ActiveCount reports the number of in-flight playback instances.
func (p *Player) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}

func (p *Player) register(cancel context.CancelFunc) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextID++
	id := p.nextID
	p.active[id] = cancel
	return id
}

func (p *Player) unregister(id uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.active, id)
}

// clip returns the decoded clip for url, fetching and caching on miss.
func (p *Player) clip(ctx context.Context, url string) (*Clip, error) {
	if clip, ok := p.cache.get(url); ok {
		return clip, nil
	}

	raw, err := p.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.cache.put(url, raw), nil
}

func (p *Player) fetch(ctx context.Context, url string) ([]byte, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("unable to build request: %w", err)
		}
		resp, err := p.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("unable to get clip: %w", err)
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	}

	path, err := homedir.Expand(url)
	if err != nil {
		path = url
	}
	return os.ReadFile(path)
}
