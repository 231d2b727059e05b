package assets

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

type fileImage struct {
	name string
	path string
}

func (f *fileImage) Name() string { return f.name }

func (f *fileImage) Decode() (image.Image, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.path, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%s: empty %s image", f.path, format)
	}
	return img, nil
}

type generatedImage struct {
	name     string
	generate func() *image.RGBA
}

func (g *generatedImage) Name() string { return g.name }

func (g *generatedImage) Decode() (image.Image, error) {
	return g.generate(), nil
}

type missingImage struct {
	name string
}

func (m *missingImage) Name() string { return m.name }

func (m *missingImage) Decode() (image.Image, error) {
	return nil, fmt.Errorf("no image named %q", m.name)
}
