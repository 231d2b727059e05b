// Package prefs keeps the wallpaper preferences in a JSON file and reports
// edits made to it by other processes.
package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"Sunlight/internal/logger"
)

// FileName is the preferences file the wallpaper reads.
const FileName = "SunSettings.json"

// Settings mirrors the file contents.
type Settings struct {
	DoubleTapSettings bool `json:"double_tab_settings"`
}

// DefaultSettings returns the values used when the file or a key is missing.
func DefaultSettings() Settings {
	return Settings{DoubleTapSettings: true}
}

// Listener is called with the new settings after every reload.
type Listener func(Settings)

// Store is safe for concurrent use.
type Store struct {
	path string

	mu        sync.RWMutex
	settings  Settings
	listeners []Listener
}

// Open reads path, falling back to defaults when it does not exist.
func Open(path string) (*Store, error) {
	s := &Store{path: path, settings: DefaultSettings()}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Settings returns a snapshot of the current values.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// DoubleTapEnabled reports whether a double tap opens the settings.
func (s *Store) DoubleTapEnabled() bool {
	return s.Settings().DoubleTapSettings
}

// SetDoubleTapEnabled updates and persists the double-tap preference.
func (s *Store) SetDoubleTapEnabled(enabled bool) error {
	s.mu.Lock()
	s.settings.DoubleTapSettings = enabled
	settings := s.settings
	s.mu.Unlock()
	return s.write(settings)
}

// OnChange registers l for every reload triggered by Watch.
func (s *Store) OnChange(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Watch reloads the file whenever it changes and notifies listeners. It blocks
// until ctx is done.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors and our own writes replace the file.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Log.Debug("Watching preferences", zap.String("path", s.path))

	target := filepath.Clean(s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if err := s.reload(); err != nil {
				logger.Log.Warn("Could not reload preferences", zap.Error(err))
				continue
			}
			s.notify()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Log.Warn("Preferences watcher error", zap.Error(err))
		}
	}
}

func (s *Store) reload() error {
	settings := DefaultSettings()
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read preferences: %w", err)
	default:
		if err := json.Unmarshal(data, &settings); err != nil {
			return fmt.Errorf("parse preferences %s: %w", s.path, err)
		}
	}

	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	return nil
}

func (s *Store) notify() {
	s.mu.RLock()
	settings := s.settings
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.RUnlock()

	for _, l := range listeners {
		l(settings)
	}
}

// write replaces the file atomically.
func (s *Store) write(settings Settings) error {
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".prefs-*")
	if err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write preferences: %w", err)
	}
	return nil
}
