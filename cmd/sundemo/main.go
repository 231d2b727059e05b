package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"Sunlight/internal/assets"
	"Sunlight/internal/engine"
	"Sunlight/internal/gfx"
	"Sunlight/internal/logger"
	"Sunlight/internal/prefs"
	"Sunlight/internal/renderer"
	"Sunlight/internal/wallpaper"
)

func main() {
	configPath := flag.String("config", "", "renderer config JSON (defaults when empty or missing)")
	assetsDir := flag.String("assets", "", "directory whose shaders and images override the built-in ones")
	prefsPath := flag.String("prefs", prefs.FileName, "wallpaper preferences file")
	settingsCmd := flag.String("settings-cmd", "", "program started on double tap, receives the settings name")
	width := flag.Int("width", 1024, "window width")
	height := flag.Int("height", 768, "window height")
	flag.Parse()

	logger.Init()
	if err := run(*configPath, *assetsDir, *prefsPath, *settingsCmd, *width, *height); err != nil {
		logger.Log.Error("Sunlight stopped", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Sync()
}

// run owns every resource of the demo so its defers complete before main exits.
func run(configPath, assetsDir, prefsPath, settingsCmd string, width, height int) error {
	config, err := renderer.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("renderer config: %w", err)
	}

	store, err := prefs.Open(prefsPath)
	if err != nil {
		return fmt.Errorf("preferences: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := store.Watch(ctx); err != nil {
			logger.Log.Warn("Preferences will not reload", zap.Error(err))
		}
	}()

	var launcher wallpaper.SettingsLauncher = wallpaper.LogLauncher{}
	if settingsCmd != "" {
		launcher = wallpaper.CommandLauncher{Command: settingsCmd}
	}

	library := assets.NewLibrary(assetsDir)
	host := engine.NewHost(width, height, "Sunlight")

	return host.Run(func(device gfx.Device) (renderer.Renderer, error) {
		sun, err := renderer.NewSunRenderer(config, renderer.Resources{
			Device: device,
			Assets: library,
		})
		if err != nil {
			return nil, err
		}

		wp := wallpaper.NewEngine(sun, store, launcher)
		store.OnChange(func(prefs.Settings) { wp.OnPreferencesChanged(store) })
		host.TapHandler = wp.OnTap
		return wp.Renderer(), nil
	})
}
