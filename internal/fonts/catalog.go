// Package fonts provides named TrueType/OpenType fonts and their metrics.
package fonts

import (
	"errors"
	"fmt"
	"os"
	"unicode"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// Names of the two fonts every catalog built by Default carries.
const (
	Regular = "regular"
	Bold    = "bold"
)

// ErrUnknownFont is returned for lookups of a name that was never registered.
var ErrUnknownFont = errors.New("fonts: unknown font")

// dpi makes one font unit equal one point, so widths come out in the same
// unit as the page geometry.
const dpi = 72

type faceKey struct {
	name string
	size float64
}

type entry struct {
	data []byte
	font *opentype.Font
}

// Catalog maps font names to parsed fonts and caches faces per size.
// A Catalog is not safe for concurrent use; build one per render.
type Catalog struct {
	fonts map[string]*entry
	faces map[faceKey]font.Face
}

func NewCatalog() *Catalog {
	return &Catalog{
		fonts: make(map[string]*entry),
		faces: make(map[faceKey]font.Face),
	}
}

// Default returns a catalog with the Go fonts registered as Regular and Bold.
func Default() *Catalog {
	c := NewCatalog()
	// The embedded Go fonts are known to parse.
	_ = c.Register(Regular, goregular.TTF)
	_ = c.Register(Bold, gobold.TTF)
	return c
}

// Register parses data as a TrueType/OpenType font under name, replacing
// any earlier registration.
func (c *Catalog) Register(name string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("fonts: parse %s: %w", name, err)
	}
	if err := c.dropFaces(name); err != nil {
		return fmt.Errorf("fonts: release faces of %s: %w", name, err)
	}
	c.fonts[name] = &entry{data: data, font: f}
	return nil
}

// RegisterFile reads and registers a font file.
func (c *Catalog) RegisterFile(name, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fonts: read %s: %w", name, err)
	}
	return c.Register(name, data)
}

// Has reports whether name is registered.
func (c *Catalog) Has(name string) bool {
	_, ok := c.fonts[name]
	return ok
}

// Data returns the raw font file, e.g. for embedding into a PDF.
func (c *Catalog) Data(name string) ([]byte, error) {
	e, ok := c.fonts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	return e.data, nil
}

// Face returns a face for name at size points.
func (c *Catalog) Face(name string, size float64) (font.Face, error) {
	key := faceKey{name: name, size: size}
	if f, ok := c.faces[key]; ok {
		return f, nil
	}
	e, ok := c.fonts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	f, err := opentype.NewFace(e.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("fonts: face %s@%g: %w", name, size, err)
	}
	c.faces[key] = f
	return f, nil
}

// Covers reports whether the named font has a glyph for every letter of s.
// Spaces and punctuation are not checked.
func (c *Catalog) Covers(name, s string) (bool, error) {
	e, ok := c.fonts[name]
	if !ok {
		return false, fmt.Errorf("%w %q", ErrUnknownFont, name)
	}
	var buf sfnt.Buffer
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		idx, err := e.font.GlyphIndex(&buf, r)
		if err != nil {
			return false, fmt.Errorf("fonts: glyph %q in %s: %w", r, name, err)
		}
		if idx == 0 {
			return false, nil
		}
	}
	return true, nil
}

// Width returns the advance width of s in points.
func (c *Catalog) Width(name string, size float64, s string) (float64, error) {
	f, err := c.Face(name, size)
	if err != nil {
		return 0, err
	}
	return toFloat(font.MeasureString(f, s)), nil
}

// Close releases all cached faces. The catalog stays usable.
func (c *Catalog) Close() error {
	var errs []error
	for k, f := range c.faces {
		errs = append(errs, f.Close())
		delete(c.faces, k)
	}
	return errors.Join(errs...)
}

func (c *Catalog) dropFaces(name string) error {
	var errs []error
	for k, f := range c.faces {
		if k.name == name {
			errs = append(errs, f.Close())
			delete(c.faces, k)
		}
	}
	return errors.Join(errs...)
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
