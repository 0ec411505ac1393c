package job

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"agendacal/internal/config"
	"agendacal/internal/fonts"
	"agendacal/internal/layout"
)

// loadFonts returns the Go fonts with any configured replacements.
func loadFonts(fc config.FontsConfig) (*fonts.Catalog, error) {
	cat := fonts.Default()
	for name, path := range map[string]string{fonts.Regular: fc.Regular, fonts.Bold: fc.Bold} {
		if path == "" {
			continue
		}
		if err := cat.RegisterFile(name, path); err != nil {
			cat.Close()
			return nil, &layout.AssetError{Asset: "font " + path, Err: err}
		}
	}
	return cat, nil
}

// loadBackground decodes the page background. An empty path means none.
func loadBackground(path string) (image.Image, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &layout.AssetError{Asset: "background " + path, Err: err}
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, &layout.AssetError{Asset: "background " + path, Err: fmt.Errorf("decode: %w", err)}
	}
	if b := img.Bounds(); b.Empty() {
		return nil, &layout.AssetError{Asset: "background " + path, Err: fmt.Errorf("empty %s image", format)}
	}
	return img, nil
}
