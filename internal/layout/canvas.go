package layout

import (
	"image"
	"image/color"
	"io"
)

// Canvas is a multi-page drawing target. Coordinates are in points with
// the origin at the bottom-left corner of the page and y pointing up.
type Canvas interface {
	// BeginPage starts a new, blank page. It is called before the first
	// drawing operation.
	BeginPage() error

	// DrawImage draws img scaled into the rectangle with bottom-left
	// corner (x, y).
	DrawImage(img image.Image, x, y, w, h float64) error

	// FillRect fills the rectangle with bottom-left corner (x, y) in c
	// with the given opacity, compositing over what is already drawn.
	FillRect(x, y, w, h float64, c color.RGBA, alpha uint8) error

	// DrawText draws s with its baseline starting at (x, y).
	DrawText(x, y float64, f Font, c color.RGBA, s string) error

	// Finish completes the document and writes it to w.
	Finish(w io.Writer) error
}
