package layout

import (
	"image"

	"agendacal/internal/model"
)

// drawBlockBackground fills the translucent rectangle behind a block whose
// top edge is at yTop. It must run before any text of the block.
func drawBlockBackground(c Canvas, g Geometry, yTop, height float64, cs model.ColorScheme) error {
	return c.FillRect(g.RectX, yTop-height, g.RectWidth, height, cs.Background, cs.BackgroundAlpha)
}

// fitRect scales an image of size (iw, ih) to fit the page while keeping
// its aspect ratio and centers it. The result is (x, y, w, h) in page
// coordinates.
func fitRect(iw, ih int, p PageSize) (x, y, w, h float64) {
	scale := min(p.Width/float64(iw), p.Height/float64(ih))
	w = float64(iw) * scale
	h = float64(ih) * scale
	return (p.Width - w) / 2, (p.Height - h) / 2, w, h
}

// drawPageBackground draws img fitted to the page. A nil image draws
// nothing.
func drawPageBackground(c Canvas, p PageSize, img image.Image) error {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil
	}
	x, y, w, h := fitRect(b.Dx(), b.Dy(), p)
	return c.DrawImage(img, x, y, w, h)
}
