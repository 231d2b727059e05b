package renderer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"Sunlight/internal/logger"
)

// Config holds the tunable parts of the sun renderer. It is read from JSON so a
// device profile can be shipped next to the binary.
type Config struct {
	// Sphere tessellation
	HorizontalResolution int `json:"horizontalResolution"`
	VerticalResolution   int `json:"verticalResolution"`

	// Offscreen target capabilities
	UseSmallerTextures       bool `json:"useSmallerTextures"`
	UseNonPowerOfTwoTextures bool `json:"useNonPowerOfTwoTextures"`
	UseNonSquareTextures     bool `json:"useNonSquareTextures"`

	// Light-ray post pass
	PostEffectsEnabled bool `json:"postEffectsEnabled"`

	// Size of the render target before the first surface change
	FrameBufferWidth  int `json:"frameBufferWidth"`
	FrameBufferHeight int `json:"frameBufferHeight"`
}

// DefaultConfig returns the settings used on GL ES 2.0 class hardware.
func DefaultConfig() Config {
	return Config{
		HorizontalResolution: 64,
		VerticalResolution:   32,

		// Conservative texture capabilities, valid on every ES 2.0 device
		UseSmallerTextures:       false,
		UseNonPowerOfTwoTextures: false,
		UseNonSquareTextures:     false,

		PostEffectsEnabled: true,

		FrameBufferWidth:  256,
		FrameBufferHeight: 256,
	}
}

// LowEndConfig returns settings for slow GPUs
func LowEndConfig() Config {
	config := DefaultConfig()

	// Coarser sphere and a quarter-size ray target
	config.HorizontalResolution = 32
	config.VerticalResolution = 16
	config.UseSmallerTextures = true

	return config
}

// HighQualityConfig returns settings for GPUs with full NPOT support
func HighQualityConfig() Config {
	config := DefaultConfig()

	config.HorizontalResolution = 128
	config.VerticalResolution = 64
	config.UseNonPowerOfTwoTextures = true
	config.UseNonSquareTextures = true

	return config
}

// LoadConfig reads a JSON config from path over the defaults. A missing file
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Log.Info("No renderer config, using defaults", zap.String("path", path))
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read renderer config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse renderer config %s: %w", path, err)
	}
	if err := config.Validate(); err != nil {
		return config, fmt.Errorf("renderer config %s: %w", path, err)
	}

	logger.Log.Info("Renderer config loaded",
		zap.String("path", path),
		zap.Int("horizontalResolution", config.HorizontalResolution),
		zap.Int("verticalResolution", config.VerticalResolution),
		zap.Bool("postEffectsEnabled", config.PostEffectsEnabled))
	return config, nil
}

// Validate rejects settings the pipeline cannot render with.
func (c Config) Validate() error {
	if c.HorizontalResolution < 2 || c.VerticalResolution < 2 {
		return fmt.Errorf("sphere resolution must be at least 2x2, got %dx%d",
			c.HorizontalResolution, c.VerticalResolution)
	}
	if c.FrameBufferWidth < 1 || c.FrameBufferHeight < 1 {
		return fmt.Errorf("frame buffer size must be positive, got %dx%d",
			c.FrameBufferWidth, c.FrameBufferHeight)
	}
	return nil
}
