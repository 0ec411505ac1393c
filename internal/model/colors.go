package model

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ColorScheme applies to a whole render call.
type ColorScheme struct {
	// Background fills the translucent block rectangles.
	Background      color.RGBA
	BackgroundAlpha uint8

	// Accent is used for the weekday/date line.
	Accent color.RGBA
	// Text is used for time, location and notes.
	Text color.RGBA
	// Title is used for the event title.
	Title color.RGBA
}

// ColorSettings is the textual form of a ColorScheme, as stored in config
// files and forms.
type ColorSettings struct {
	Background      string `yaml:"background" json:"background"`
	BackgroundAlpha int    `yaml:"background_alpha" json:"background_alpha"`
	Accent          string `yaml:"accent" json:"accent"`
	Text            string `yaml:"text" json:"text"`
	Title           string `yaml:"title" json:"title"`
}

// DefaultColorSettings mirrors the defaults of the stored color settings.
func DefaultColorSettings() ColorSettings {
	return ColorSettings{
		Background:      "#ffffff",
		BackgroundAlpha: 128,
		Accent:          "#c1540c",
		Text:            "#4e4e4e",
		Title:           "#000000",
	}
}

var errAlphaRange = errors.New("alpha must be within 0..255")

// ParseColorScheme converts hex strings and the integer alpha into a
// ColorScheme. An empty Title falls back to black.
func ParseColorScheme(s ColorSettings) (ColorScheme, error) {
	var cs ColorScheme
	var err error

	if cs.Background, err = parseField("background", s.Background); err != nil {
		return ColorScheme{}, err
	}
	if cs.Accent, err = parseField("accent", s.Accent); err != nil {
		return ColorScheme{}, err
	}
	if cs.Text, err = parseField("text", s.Text); err != nil {
		return ColorScheme{}, err
	}
	title := s.Title
	if title == "" {
		title = "#000000"
	}
	if cs.Title, err = parseField("title", title); err != nil {
		return ColorScheme{}, err
	}

	if s.BackgroundAlpha < 0 || s.BackgroundAlpha > 255 {
		return ColorScheme{}, &InputError{Field: "background_alpha", Err: errAlphaRange}
	}
	cs.BackgroundAlpha = uint8(s.BackgroundAlpha)
	return cs, nil
}

func parseField(field, v string) (color.RGBA, error) {
	c, err := ParseHex(v)
	if err != nil {
		return color.RGBA{}, &InputError{Field: field, Err: err}
	}
	return c, nil
}

// ParseHex parses "#rrggbb", "rrggbb" or the short form "#rgb" into an
// opaque color.
func ParseHex(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("malformed hex color %q", s)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("malformed hex color %q", s)
	}
	return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, nil
}
