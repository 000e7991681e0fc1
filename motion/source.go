package motion

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EnvReducedMotion is the environment variable consulted by EnvSource
const EnvReducedMotion = "ATTENTION_ERA_REDUCED_MOTION"

// Source is the system-level reduced-motion signal
type Source interface {
	Name() string
	// Matches reports the current system preference
	Matches() bool
	// Watch delivers changes on an arbitrary goroutine until stop is called
	Watch(fn func(reduced bool)) (stop func(), err error)
}

// StaticSource is a fixed preference that never changes
type StaticSource bool

func (s StaticSource) Name() string  { return "static" }
func (s StaticSource) Matches() bool { return bool(s) }

func (s StaticSource) Watch(func(bool)) (func(), error) {
	return func() {}, nil
}

// EnvSource reads the preference once from an environment variable
type EnvSource struct {
	Key string
}

func (s EnvSource) Name() string { return "env:" + s.key() }

func (s EnvSource) key() string {
	if s.Key == "" {
		return EnvReducedMotion
	}
	return s.Key
}

func (s EnvSource) Matches() bool {
	v, ok := ParseValue(os.Getenv(s.key()))
	return ok && v
}

// Watch is a no-op: the process environment does not change after start
func (s EnvSource) Watch(func(bool)) (func(), error) {
	return func() {}, nil
}

// FileSource reads the preference from a file and watches it for edits
// A missing or unparsable file means no preference (animation allowed)
type FileSource struct {
	Path   string
	Logger *zap.Logger
}

func (s *FileSource) Name() string { return "file:" + s.Path }

func (s *FileSource) Matches() bool {
	v, _ := s.read()
	return v
}

func (s *FileSource) read() (bool, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	v, _ := ParsePreference(data)
	return v, nil
}

// Watch observes the containing directory so editor rename-and-replace saves are seen
func (s *FileSource) Watch(fn func(bool)) (func(), error) {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	dir := filepath.Dir(s.Path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(s.Path)
	last := s.Matches()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				v, err := s.read()
				if err != nil {
					logger.Warn("read reduced motion preference", zap.Error(err))
					continue
				}
				if v != last {
					last = v
					fn(v)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("reduced motion watcher", zap.Error(err))
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			watcher.Close()
			wg.Wait()
		})
	}, nil
}

// ParsePreference extracts the flag from file content
// Accepts a bare value or a `reduced_motion = value` line; '#' starts a comment
func ParsePreference(data []byte) (bool, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if key, value, found := strings.Cut(line, "="); found {
			key = strings.TrimSpace(key)
			if key != "reduced_motion" && key != "prefers-reduced-motion" {
				continue
			}
			line = value
		}
		return ParseValue(line)
	}
	return false, false
}

// ParseValue maps a textual preference to a flag, ok is false for unknown values
func ParseValue(s string) (bool, bool) {
	s = strings.ToLower(strings.Trim(strings.TrimSpace(s), `"'`))
	switch s {
	case "1", "true", "yes", "on", "reduce":
		return true, true
	case "0", "false", "no", "off", "no-preference":
		return false, true
	}
	return false, false
}
