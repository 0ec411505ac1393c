// Package raster implements layout.Canvas on in-memory RGBA images. It is
// used for PNG previews of a rendered document.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"agendacal/internal/layout"
)

// FaceSource supplies font faces by name and pixel size.
type FaceSource interface {
	Face(name string, size float64) (font.Face, error)
}

// Canvas draws each page onto its own transparent RGBA image. One point
// maps to Scale pixels.
type Canvas struct {
	page  layout.PageSize
	scale float64
	faces FaceSource

	pages []*image.RGBA
	cur   *image.RGBA
}

func New(page layout.PageSize, scale float64, faces FaceSource) *Canvas {
	if scale <= 0 {
		scale = 1
	}
	return &Canvas{page: page, scale: scale, faces: faces}
}

func (c *Canvas) BeginPage() error {
	w := int(math.Ceil(c.page.Width * c.scale))
	h := int(math.Ceil(c.page.Height * c.scale))
	c.cur = image.NewRGBA(image.Rect(0, 0, w, h))
	c.pages = append(c.pages, c.cur)
	return nil
}

func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) error {
	if c.cur == nil {
		return errNoPage
	}
	draw.CatmullRom.Scale(c.cur, c.rect(x, y, w, h), img, img.Bounds(), draw.Over, nil)
	return nil
}

// FillRect composites an NRGBA fill so a rectangle drawn on a transparent
// page carries exactly the requested alpha.
func (c *Canvas) FillRect(x, y, w, h float64, col color.RGBA, alpha uint8) error {
	if c.cur == nil {
		return errNoPage
	}
	src := image.NewUniform(color.NRGBA{R: col.R, G: col.G, B: col.B, A: alpha})
	draw.Draw(c.cur, c.rect(x, y, w, h), src, image.Point{}, draw.Over)
	return nil
}

func (c *Canvas) DrawText(x, y float64, f layout.Font, col color.RGBA, s string) error {
	if c.cur == nil {
		return errNoPage
	}
	face, err := c.faces.Face(f.Name, f.Size*c.scale)
	if err != nil {
		return &layout.AssetError{Asset: "font " + f.Name, Err: err}
	}
	px, py := c.point(x, y)
	d := font.Drawer{
		Dst:  c.cur,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(px * 64), Y: fixed.Int26_6(py * 64)},
	}
	d.DrawString(s)
	return nil
}

// Finish writes all pages stacked top to bottom as a single PNG.
func (c *Canvas) Finish(w io.Writer) error {
	if len(c.pages) == 0 {
		return errNoPage
	}
	b := c.pages[0].Bounds()
	sheet := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()*len(c.pages)))
	for i, p := range c.pages {
		r := b.Add(image.Pt(0, i*b.Dy()))
		draw.Draw(sheet, r, p, image.Point{}, draw.Src)
	}
	if err := png.Encode(w, sheet); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}

// Pages returns the drawn pages in order.
func (c *Canvas) Pages() []*image.RGBA {
	return c.pages
}

var errNoPage = errors.New("raster: no page begun")

// point converts page coordinates to pixel coordinates.
func (c *Canvas) point(x, y float64) (float64, float64) {
	return x * c.scale, (c.page.Height - y) * c.scale
}

func (c *Canvas) rect(x, y, w, h float64) image.Rectangle {
	x0, y0 := c.point(x, y+h)
	x1, y1 := c.point(x+w, y)
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
}
