package layout

import (
	"errors"
	"fmt"
)

// PageSize is the canvas size in points.
type PageSize struct {
	Width  float64 `yaml:"width" json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// DefaultPageSize is a 16:9 landscape page.
var DefaultPageSize = PageSize{Width: 1200, Height: 675}

// Config holds every layout ratio. Horizontal values are fractions of the
// page width, vertical margins and the base font are fractions of the page
// height, all other sizes are multiples of the base font size.
type Config struct {
	LeftMargin  float64 `yaml:"left_margin" json:"left_margin"`
	RightColumn float64 `yaml:"right_column" json:"right_column"`
	Indent      float64 `yaml:"indent" json:"indent"`
	NotesInset  float64 `yaml:"notes_inset" json:"notes_inset"`

	// TopMargin is where the cursor starts, measured from the bottom edge.
	TopMargin    float64 `yaml:"top_margin" json:"top_margin"`
	BottomMargin float64 `yaml:"bottom_margin" json:"bottom_margin"`

	BaseFont   float64 `yaml:"base_font" json:"base_font"`
	LargeFont  float64 `yaml:"large_font" json:"large_font"`
	MediumFont float64 `yaml:"medium_font" json:"medium_font"`
	SmallFont  float64 `yaml:"small_font" json:"small_font"`

	// LineHeight is a multiple of the font size.
	LineHeight float64 `yaml:"line_height" json:"line_height"`

	TopPadding   float64 `yaml:"top_padding" json:"top_padding"`
	BlockSpacing float64 `yaml:"block_spacing" json:"block_spacing"`
}

func DefaultConfig() Config {
	return Config{
		LeftMargin:   1.0 / 27,
		RightColumn:  2.0 / 5,
		Indent:       1.0 / 40,
		NotesInset:   1.0 / 40,
		TopMargin:    0.95,
		BottomMargin: 0.05,
		BaseFont:     1.0 / 27,
		LargeFont:    1.5,
		MediumFont:   1.2,
		SmallFont:    1.0,
		LineHeight:   1.4,
		TopPadding:   0.8,
		BlockSpacing: 1.5,
	}
}

var errNotPositive = errors.New("must be positive")

// Validate checks that the ratios describe a usable two-column layout.
func (c Config) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"left_margin", c.LeftMargin},
		{"right_column", c.RightColumn},
		{"indent", c.Indent},
		{"top_margin", c.TopMargin},
		{"bottom_margin", c.BottomMargin},
		{"base_font", c.BaseFont},
		{"large_font", c.LargeFont},
		{"medium_font", c.MediumFont},
		{"small_font", c.SmallFont},
		{"line_height", c.LineHeight},
		{"block_spacing", c.BlockSpacing},
	}
	for _, f := range fields {
		if f.v <= 0 {
			return fmt.Errorf("layout: %s %w", f.name, errNotPositive)
		}
	}
	if c.NotesInset < 0 || c.TopPadding < 0 {
		return errors.New("layout: notes_inset and top_padding must not be negative")
	}
	if c.LeftMargin >= 0.5 {
		return errors.New("layout: left_margin leaves no room for the block")
	}
	if c.TopMargin > 1 || c.BottomMargin >= c.TopMargin {
		return errors.New("layout: margins leave no usable page height")
	}
	if c.RightColumn <= c.LeftMargin+c.Indent {
		return errors.New("layout: right column starts inside the left column")
	}
	if c.RightColumn+c.Indent+c.NotesInset >= 1-c.LeftMargin {
		return errors.New("layout: right column has no width")
	}
	return nil
}

// Geometry holds absolute values in points derived from a Config for one
// page size. The y axis points up, origin at the bottom-left corner.
type Geometry struct {
	Page PageSize

	// RectX / RectWidth span the block rectangle.
	RectX     float64
	RectWidth float64

	LeftTextX  float64
	// LeftWidth is the room for the date column, up to the title column.
	LeftWidth  float64
	RightX     float64
	TitleWidth float64
	NotesWidth float64

	Top    float64
	Bottom float64

	LargeSize  float64
	MediumSize float64
	SmallSize  float64

	LargeLine  float64
	MediumLine float64
	SmallLine  float64

	TopPadding   float64
	BlockSpacing float64
}

// Geometry applies the ratios to p.
func (c Config) Geometry(p PageSize) Geometry {
	base := p.Height * c.BaseFont
	g := Geometry{
		Page:         p,
		RectX:        p.Width * c.LeftMargin,
		RightX:       p.Width * c.RightColumn,
		Top:          p.Height * c.TopMargin,
		Bottom:       p.Height * c.BottomMargin,
		LargeSize:    base * c.LargeFont,
		MediumSize:   base * c.MediumFont,
		SmallSize:    base * c.SmallFont,
		TopPadding:   base * c.TopPadding,
		BlockSpacing: base * c.BlockSpacing,
	}
	indent := p.Width * c.Indent
	g.RectWidth = p.Width - 2*g.RectX
	g.LeftTextX = g.RectX + indent
	g.LeftWidth = g.RightX - g.LeftTextX
	g.TitleWidth = g.RectX + g.RectWidth - indent - g.RightX
	g.NotesWidth = g.TitleWidth - p.Width*c.NotesInset
	g.LargeLine = g.LargeSize * c.LineHeight
	g.MediumLine = g.MediumSize * c.LineHeight
	g.SmallLine = g.SmallSize * c.LineHeight
	return g
}

// UsableHeight is the vertical space between the margins.
func (g Geometry) UsableHeight() float64 {
	return g.Top - g.Bottom
}

func (p PageSize) validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("layout: page size %gx%g %w", p.Width, p.Height, errNotPositive)
	}
	if p.Height > p.Width {
		return fmt.Errorf("layout: page size %gx%g is not landscape", p.Width, p.Height)
	}
	return nil
}
