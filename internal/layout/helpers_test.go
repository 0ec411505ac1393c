package layout

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"
	"unicode/utf8"
)

// runeMeasurer gives every rune an advance of size*factor.
type runeMeasurer struct {
	factor float64
	known  map[string]bool
	failOn string // measuring a string containing failOn returns errMetric
}

var errMetric = errors.New("metric lookup failed")

func newRuneMeasurer() *runeMeasurer {
	return &runeMeasurer{
		factor: 0.5,
		known:  map[string]bool{DefaultRegularFont: true, DefaultBoldFont: true},
	}
}

func (m *runeMeasurer) Width(name string, size float64, s string) (float64, error) {
	if !m.known[name] {
		return 0, fmt.Errorf("unknown font %q", name)
	}
	if m.failOn != "" && strings.Contains(s, m.failOn) {
		return 0, errMetric
	}
	return float64(utf8.RuneCountInString(s)) * size * m.factor, nil
}

type opKind int

const (
	opPage opKind = iota
	opImage
	opRect
	opText
)

type op struct {
	kind       opKind
	x, y, w, h float64
	font       Font
	color      color.RGBA
	alpha      uint8
	text       string
}

// recordingCanvas records every call.
type recordingCanvas struct {
	ops      []op
	finished bool
}

func (c *recordingCanvas) BeginPage() error {
	c.ops = append(c.ops, op{kind: opPage})
	return nil
}

func (c *recordingCanvas) DrawImage(_ image.Image, x, y, w, h float64) error {
	c.ops = append(c.ops, op{kind: opImage, x: x, y: y, w: w, h: h})
	return nil
}

func (c *recordingCanvas) FillRect(x, y, w, h float64, col color.RGBA, alpha uint8) error {
	c.ops = append(c.ops, op{kind: opRect, x: x, y: y, w: w, h: h, color: col, alpha: alpha})
	return nil
}

func (c *recordingCanvas) DrawText(x, y float64, f Font, col color.RGBA, s string) error {
	c.ops = append(c.ops, op{kind: opText, x: x, y: y, font: f, color: col, text: s})
	return nil
}

func (c *recordingCanvas) Finish(w io.Writer) error {
	c.finished = true
	_, err := io.WriteString(w, "%document")
	return err
}

func (c *recordingCanvas) count(k opKind) int {
	n := 0
	for _, o := range c.ops {
		if o.kind == k {
			n++
		}
	}
	return n
}

// blocks groups the text ops by the rectangle drawn before them.
func (c *recordingCanvas) blocks() []recordedBlock {
	var out []recordedBlock
	page := 0
	for _, o := range c.ops {
		switch o.kind {
		case opPage:
			page++
		case opRect:
			out = append(out, recordedBlock{page: page, rect: o})
		case opText:
			if len(out) > 0 {
				out[len(out)-1].texts = append(out[len(out)-1].texts, o)
			}
		}
	}
	return out
}

type recordedBlock struct {
	page  int
	rect  op
	texts []op
}

func (b recordedBlock) column(x float64) []string {
	var out []string
	for _, t := range b.texts {
		if t.x == x {
			out = append(out, t.text)
		}
	}
	return out
}
