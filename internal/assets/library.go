// Package assets serves the shader sources and images the sun renderer asks
// for. Built-in GLSL is embedded; images without a file are generated with
// Perlin noise. A directory given to NewLibrary overrides both by file name.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"Sunlight/internal/logger"
	"Sunlight/internal/renderer"
)

//go:embed shaders/*.glsl
var embedded embed.FS

// imageExtensions are tried in order when looking for an image file.
var imageExtensions = []string{".png", ".jpg", ".jpeg", ".bmp", ".webp"}

const (
	DefaultTextureSize = 256
	DefaultSeed        = 1987
)

type Library struct {
	dir string

	// TextureSize is the edge of generated square textures.
	TextureSize int
	// Seed drives the Perlin generators.
	Seed int64
}

var _ renderer.AssetProvider = (*Library)(nil)

// NewLibrary returns a library overlaid by files in dir. An empty dir serves
// only the built-in assets.
func NewLibrary(dir string) *Library {
	return &Library{
		dir:         dir,
		TextureSize: DefaultTextureSize,
		Seed:        DefaultSeed,
	}
}

// ShaderSource returns <dir>/<name>.glsl if present, else the embedded source.
func (l *Library) ShaderSource(name string) (string, error) {
	file := name + ".glsl"
	if l.dir != "" {
		data, err := os.ReadFile(filepath.Join(l.dir, file))
		if err == nil {
			logger.Log.Debug("Shader loaded from disk", zap.String("name", name))
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read shader %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("shaders/" + file)
	if err != nil {
		return "", fmt.Errorf("shader %s: %w", name, err)
	}
	return string(data), nil
}

// Image returns the first <dir>/<name>.<ext> found, else a generated image.
// Unknown names yield a source whose Decode fails.
func (l *Library) Image(name string) renderer.ImageSource {
	if l.dir != "" {
		for _, ext := range imageExtensions {
			path := filepath.Join(l.dir, name+ext)
			if _, err := os.Stat(path); err == nil {
				return &fileImage{name: name, path: path}
			}
		}
	}

	size := l.TextureSize
	seed := l.Seed
	switch name {
	case renderer.SunSurfaceImage:
		return &generatedImage{name: name, generate: func() *image.RGBA { return SunSurface(size, seed) }}
	case renderer.NoiseImage:
		return &generatedImage{name: name, generate: func() *image.RGBA { return Noise(size, seed+1) }}
	case renderer.StarColorImage:
		return &generatedImage{name: name, generate: func() *image.RGBA { return StarColor(size, starColorRows) }}
	}
	return &missingImage{name: name}
}
