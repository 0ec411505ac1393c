// Package pdfcanvas implements layout.Canvas on top of fpdf.
package pdfcanvas

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/go-pdf/fpdf"

	"agendacal/internal/layout"
)

// FontSource supplies TrueType font files by name.
type FontSource interface {
	Data(name string) ([]byte, error)
}

// Options carry document metadata.
type Options struct {
	Title   string
	Author  string
	Creator string
}

// Canvas writes a PDF in points. The fpdf origin is the top-left corner;
// incoming coordinates are flipped.
type Canvas struct {
	pdf   *fpdf.Fpdf
	page  layout.PageSize
	fonts FontSource

	registered map[string]bool

	// The background is registered once and reused on every page.
	bgSrc  image.Image
	bgName string
	images int

	finished bool
}

func New(page layout.PageSize, fonts FontSource, opts Options) *Canvas {
	// Orientation "P" takes the size verbatim; "L" would swap it.
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	if opts.Author != "" {
		pdf.SetAuthor(opts.Author, true)
	}
	if opts.Creator != "" {
		pdf.SetCreator(opts.Creator, true)
	}

	return &Canvas{
		pdf:        pdf,
		page:       page,
		fonts:      fonts,
		registered: make(map[string]bool),
	}
}

func (c *Canvas) BeginPage() error {
	if c.finished {
		return errors.New("pdfcanvas: document already finished")
	}
	c.pdf.AddPage()
	return c.pdf.Error()
}

// DrawImage draws img into the rectangle. Images are compared by identity:
// drawing the same image again reuses the embedded copy.
func (c *Canvas) DrawImage(img image.Image, x, y, w, h float64) error {
	if c.bgSrc != img || c.bgName == "" {
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return fmt.Errorf("pdfcanvas: encode image: %w", err)
		}
		c.images++
		name := fmt.Sprintf("image%d", c.images)
		c.pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, &buf)
		if err := c.pdf.Error(); err != nil {
			return fmt.Errorf("pdfcanvas: register image: %w", err)
		}
		c.bgSrc, c.bgName = img, name
	}

	c.pdf.ImageOptions(c.bgName, x, c.flip(y+h), w, h, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	return c.pdf.Error()
}

func (c *Canvas) FillRect(x, y, w, h float64, col color.RGBA, alpha uint8) error {
	c.pdf.SetAlpha(float64(alpha)/255, "Normal")
	c.pdf.SetFillColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Rect(x, c.flip(y+h), w, h, "F")
	c.pdf.SetAlpha(1, "Normal")
	return c.pdf.Error()
}

func (c *Canvas) DrawText(x, y float64, f layout.Font, col color.RGBA, s string) error {
	if err := c.useFont(f); err != nil {
		return err
	}
	c.pdf.SetTextColor(int(col.R), int(col.G), int(col.B))
	c.pdf.Text(x, c.flip(y), s)
	return c.pdf.Error()
}

func (c *Canvas) Finish(w io.Writer) error {
	if c.finished {
		return errors.New("pdfcanvas: document already finished")
	}
	c.finished = true
	if err := c.pdf.Error(); err != nil {
		return err
	}
	return c.pdf.Output(w)
}

// Pages reports the number of pages begun.
func (c *Canvas) Pages() int {
	return c.pdf.PageCount()
}

func (c *Canvas) useFont(f layout.Font) error {
	if !c.registered[f.Name] {
		data, err := c.fonts.Data(f.Name)
		if err != nil {
			return &layout.AssetError{Asset: "font " + f.Name, Err: err}
		}
		c.pdf.AddUTF8FontFromBytes(f.Name, "", data)
		if err := c.pdf.Error(); err != nil {
			return &layout.AssetError{Asset: "font " + f.Name, Err: err}
		}
		c.registered[f.Name] = true
	}
	c.pdf.SetFont(f.Name, "", f.Size)
	return c.pdf.Error()
}

func (c *Canvas) flip(y float64) float64 {
	return c.page.Height - y
}
