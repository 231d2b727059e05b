// Package wallpaper is the live-wallpaper glue around the sun renderer: it
// turns double taps into a settings request and follows the preference that
// enables them.
package wallpaper

import (
	"os/exec"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"Sunlight/internal/logger"
	"Sunlight/internal/renderer"
)

// SettingsName identifies the settings surface a double tap opens.
const SettingsName = "WallpaperSettings"

// DoubleTapWindow is the longest gap between two taps of a double tap.
const DoubleTapWindow = 500 * time.Millisecond

type Preferences interface {
	DoubleTapEnabled() bool
}

// SettingsLauncher opens the settings surface. Errors are logged, never
// retried.
type SettingsLauncher interface {
	RequestSettings() error
}

// Engine owns one wallpaper surface.
type Engine struct {
	renderer renderer.Renderer
	launcher SettingsLauncher
	now      func() time.Time

	doubleTap atomic.Bool
	lastTap   atomic.Int64
}

// NewEngine reads the double-tap preference once; later changes arrive through
// OnPreferencesChanged or SetDoubleTapEnabled.
func NewEngine(r renderer.Renderer, prefs Preferences, launcher SettingsLauncher) *Engine {
	e := &Engine{
		renderer: r,
		launcher: launcher,
		now:      time.Now,
	}
	e.OnPreferencesChanged(prefs)
	return e
}

// Renderer returns the renderer the host drives.
func (e *Engine) Renderer() renderer.Renderer { return e.renderer }

// OnPreferencesChanged re-reads the preferences. A nil value keeps double tap
// enabled.
func (e *Engine) OnPreferencesChanged(prefs Preferences) {
	enabled := true
	if prefs != nil {
		enabled = prefs.DoubleTapEnabled()
	}
	e.SetDoubleTapEnabled(enabled)
}

// SetDoubleTapEnabled is safe from any goroutine.
func (e *Engine) SetDoubleTapEnabled(enabled bool) {
	e.doubleTap.Store(enabled)
	logger.Log.Debug("Double tap preference", zap.Bool("enabled", enabled))
}

// DoubleTapEnabled reports the current preference.
func (e *Engine) DoubleTapEnabled() bool { return e.doubleTap.Load() }

// OnTap handles a tap on the wallpaper and reports whether it completed a
// double tap that requested the settings.
func (e *Engine) OnTap() bool {
	if !e.doubleTap.Load() {
		return false
	}

	now := e.now().UnixMilli()
	last := e.lastTap.Load()
	if last == 0 || now-last > DoubleTapWindow.Milliseconds() {
		e.lastTap.Store(now)
		return false
	}

	// A third tap starts a new pair.
	e.lastTap.Store(0)
	if e.launcher == nil {
		return false
	}
	if err := e.launcher.RequestSettings(); err != nil {
		logger.Log.Warn("Could not open settings", zap.String("settings", SettingsName), zap.Error(err))
	}
	return true
}

// LogLauncher only logs the request. Used when no settings UI exists.
type LogLauncher struct{}

func (LogLauncher) RequestSettings() error {
	logger.Log.Info("Settings requested", zap.String("settings", SettingsName))
	return nil
}

// CommandLauncher starts an external program with the settings name as its
// last argument and does not wait for it.
type CommandLauncher struct {
	Command string
	Args    []string
}

func (c CommandLauncher) RequestSettings() error {
	args := append(append([]string(nil), c.Args...), SettingsName)
	cmd := exec.Command(c.Command, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait()
	return nil
}
