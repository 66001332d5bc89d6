package lesson

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/klauspost/compress/gzip"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/clsslgtti-creator/slgti-lessons/filesystem"
)

// Load reads and parses a lesson document from a local path (plain or
// gzipped JSON) or an http(s) URL. A failure here is fatal for the
// page load; the caller surfaces it and does not retry.
func Load(source string) (*Document, error) {
	data, err := read(source)
	if err != nil {
		return nil, fmt.Errorf("unable to load lesson: %w", err)
	}
	return Parse(data)
}

func read(source string) ([]byte, error) {
	if u, err := url.ParseRequestURI(source); err == nil && strings.Contains(source, "://") {
		if u.Scheme != "http" && u.Scheme != "https" {
			return nil, fmt.Errorf("%s is not a supported protocol", u.Scheme)
		}
		client := &http.Client{Timeout: 30 * time.Second}
		resp, err := client.Get(u.String())
		if err != nil {
			return nil, fmt.Errorf("unable to get url: %w", err)
		}
		defer resp.Body.Close() //nolint:errcheck
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
		}
		return decompress(source, resp.Body)
	}

	path, err := homedir.Expand(source)
	if err != nil {
		path = source
	}
	f, err := filesystem.API().Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return decompress(path, f)
}

// decompress transparently unwraps gzipped lesson files.
func decompress(name string, r io.Reader) ([]byte, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("unable to read gzip: %w", err)
		}
		defer gz.Close() //nolint:errcheck
		return io.ReadAll(gz)
	}
	return io.ReadAll(r)
}

// Watch re-loads a local lesson file whenever it changes and hands the
// fresh document to onChange. It returns a stop function. Load errors
// during a reload are logged and skipped; the running lesson stays up.
func Watch(path string, onChange func(*Document)) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("unable to create watcher: %w", err)
	}

	expanded, err := homedir.Expand(path)
	if err != nil {
		expanded = path
	}
	if err := watcher.Add(expanded); err != nil {
		watcher.Close() //nolint:errcheck
		return nil, fmt.Errorf("unable to watch %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				doc, err := Load(expanded)
				if err != nil {
					log.Warn("lesson reload failed, keeping current content", "err", err)
					continue
				}
				log.Info("lesson reloaded", "path", expanded)
				onChange(doc)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn("lesson watcher error", "err", err)
			}
		}
	}()

	return func() {
		close(done)
		watcher.Close() //nolint:errcheck
	}, nil
}
