package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !s.DoubleTapEnabled() {
		t.Error("double tap should default to enabled")
	}
}

func TestOpenReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte(`{"double_tab_settings": false}`), 0o644)

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.DoubleTapEnabled() {
		t.Error("expected double tap disabled from file")
	}
}

func TestOpenMissingKeyUsesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte(`{}`), 0o644)

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if !s.DoubleTapEnabled() {
		t.Error("missing key should keep the default")
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	os.WriteFile(path, []byte(`{`), 0o644)

	if _, err := Open(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestSetDoubleTapPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	s, _ := Open(path)

	if err := s.SetDoubleTapEnabled(false); err != nil {
		t.Fatalf("SetDoubleTapEnabled: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.DoubleTapEnabled() {
		t.Error("preference should survive a reopen")
	}
}

func TestWatchNotifiesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	changed := make(chan Settings, 8)
	s.OnChange(func(settings Settings) { changed <- settings })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	// Keep rewriting until the watcher is up and reports the edit.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case settings := <-changed:
			if settings.DoubleTapSettings {
				t.Error("listener should see the edited value")
			}
			if s.DoubleTapEnabled() {
				t.Error("store should hold the edited value")
			}
			cancel()
			if err := <-done; err != nil {
				t.Errorf("Watch: %v", err)
			}
			return
		case <-tick.C:
			os.WriteFile(path, []byte(`{"double_tab_settings": false}`), 0o644)
		case <-deadline:
			t.Fatal("no change notification")
		}
	}
}
