package layout

import (
	"errors"
	"image"
	"image/color"
	"io"
	"slices"
	"strings"
	"time"

	"agendacal/internal/locale"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Default font names, matching the names a fonts.Catalog registers.
const (
	DefaultRegularFont = "regular"
	DefaultBoldFont    = "bold"
)

// Options configure an Engine.
type Options struct {
	Fonts  Measurer
	Config Config
	Page   PageSize
	Colors model.ColorScheme

	// Dates formats the left column; nil selects German.
	Dates *locale.Formatter

	// RegularFont / BoldFont name fonts known to Fonts. Empty selects
	// DefaultRegularFont / DefaultBoldFont.
	RegularFont string
	BoldFont    string
}

// Engine lays out calendar events onto a Canvas. An Engine holds no state
// between Render calls.
type Engine struct {
	fonts  Measurer
	geo    Geometry
	colors model.ColorScheme
	dates  *locale.Formatter

	regular Font // notes, time and location
	bold    Font // date line and title
}

// Stats summarizes one render.
type Stats struct {
	Pages  int
	Events int
	// Breaks holds the index (in start order) of every event that opened
	// a new page.
	Breaks []int
}

// NewEngine validates the options and checks that both fonts can be
// measured.
func NewEngine(opts Options) (*Engine, error) {
	if opts.Fonts == nil {
		return nil, &RenderError{Stage: StageSetup, Err: errors.New("no font metrics provider")}
	}
	if err := opts.Config.Validate(); err != nil {
		return nil, &RenderError{Stage: StageSetup, Err: err}
	}
	if err := opts.Page.validate(); err != nil {
		return nil, &RenderError{Stage: StageSetup, Err: err}
	}
	if opts.RegularFont == "" {
		opts.RegularFont = DefaultRegularFont
	}
	if opts.BoldFont == "" {
		opts.BoldFont = DefaultBoldFont
	}
	if opts.Dates == nil {
		opts.Dates = locale.New("de")
	}

	geo := opts.Config.Geometry(opts.Page)
	e := &Engine{
		fonts:   opts.Fonts,
		geo:     geo,
		colors:  opts.Colors,
		dates:   opts.Dates,
		regular: Font{Name: opts.RegularFont, Size: geo.MediumSize},
		bold:    Font{Name: opts.BoldFont, Size: geo.LargeSize},
	}

	for _, f := range []Font{e.regular, e.bold} {
		if _, err := e.fonts.Width(f.Name, f.Size, "M"); err != nil {
			return nil, &RenderError{Stage: StageSetup, Err: &AssetError{Asset: "font " + f.Name, Err: err}}
		}
	}
	return e, nil
}

// Geometry returns the absolute layout values in use.
func (e *Engine) Geometry() Geometry {
	return e.geo
}

// Render draws events onto c in start order and writes the finished
// document to w. background may be nil. On error nothing is written to w.
func (e *Engine) Render(events []model.CalendarEvent, background image.Image, c Canvas, w io.Writer) (Stats, error) {
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return Stats{}, &RenderError{Stage: StageValidate, EventID: ev.ID, Err: err}
		}
	}

	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b model.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})

	pm := NewPageManager(c, e.geo, background)
	if err := pm.Start(); err != nil {
		return Stats{}, &RenderError{Stage: StagePaginate, Err: err}
	}

	stats := Stats{Events: len(sorted)}
	for i, ev := range sorted {
		block, err := e.measure(ev)
		if err != nil {
			return Stats{}, err
		}

		top, broke, err := pm.Reserve(block.Height)
		if err != nil {
			return Stats{}, &RenderError{Stage: StagePaginate, EventID: ev.ID, Err: err}
		}
		if broke {
			stats.Breaks = append(stats.Breaks, i)
		}

		if err := e.drawBlock(c, ev, block, top); err != nil {
			return Stats{}, &RenderError{Stage: StageDraw, EventID: ev.ID, Err: err}
		}
		pm.Advance(block.Height + e.geo.BlockSpacing)
	}

	if err := c.Finish(w); err != nil {
		return Stats{}, &RenderError{Stage: StageFinalize, Err: err}
	}
	stats.Pages = pm.Pages()
	return stats, nil
}

// measure wraps the title and notes of ev and computes its block.
func (e *Engine) measure(ev model.CalendarEvent) (Block, error) {
	g := e.geo

	title, err := Wrap(e.fonts, model.CleanText(ev.Title), e.bold, g.LargeLine, g.TitleWidth)
	if err != nil {
		return Block{}, &RenderError{Stage: StageWrapTitle, EventID: ev.ID, Err: err}
	}
	notes, err := Wrap(e.fonts, model.CleanText(ev.ResolvedText()), e.regular, g.MediumLine, g.NotesWidth)
	if err != nil {
		return Block{}, &RenderError{Stage: StageWrapNotes, EventID: ev.ID, Err: err}
	}
	if title.Overflow || notes.Overflow {
		appLog.Warn("layout: word wider than column", "event_id", ev.ID)
	}

	b := MeasureBlock(g, title, notes, singleLine(ev.Location) != "")
	if b.left, err = e.fitLeftColumn(ev, b.HasLocation); err != nil {
		return Block{}, &RenderError{Stage: StageMeasure, EventID: ev.ID, Err: err}
	}
	if drawn := b.DrawnHeight(g); b.Height <= 0 || b.Height < drawn {
		return Block{}, &RenderError{
			Stage:   StageMeasure,
			EventID: ev.ID,
			Err:     &InvariantError{EventID: ev.ID, Height: b.Height, Drawn: drawn},
		}
	}
	return b, nil
}

// drawBlock draws the background and both columns of a block whose top
// edge is at top.
func (e *Engine) drawBlock(c Canvas, ev model.CalendarEvent, b Block, top float64) error {
	g := e.geo
	if err := drawBlockBackground(c, g, top, b.Height, e.colors); err != nil {
		return err
	}

	textTop := top - g.TopPadding

	// Left column: date, time range, location.
	y := textTop
	for i, line := range b.left {
		col := e.colors.Text
		if i == 0 {
			y -= g.LargeLine
			col = e.colors.Accent
		} else {
			y -= g.MediumLine
		}
		if err := c.DrawText(g.LeftTextX, y, line.font, col, line.text); err != nil {
			return err
		}
	}

	// Right column: title, then notes.
	y = textTop
	for _, line := range b.Title.Lines {
		y -= g.LargeLine
		if err := drawLine(c, g.RightX, y, e.bold, e.colors.Title, line); err != nil {
			return err
		}
	}
	if len(b.Title.Lines) == 0 {
		y -= g.LargeLine
	}
	for _, line := range b.Notes.Lines {
		y -= g.MediumLine
		if err := drawLine(c, g.RightX, y, e.regular, e.colors.Text, line); err != nil {
			return err
		}
	}
	return nil
}

// fitLeftColumn shrinks each left column line until it ends before the
// title column. Lines still too wide at the small size are logged.
func (e *Engine) fitLeftColumn(ev model.CalendarEvent, hasLocation bool) ([]columnLine, error) {
	g := e.geo
	lines := []columnLine{
		{text: e.dates.Date(ev.Start), font: e.bold},
		{text: e.timeRange(ev.Start, ev.End), font: e.regular},
	}
	if hasLocation {
		lines = append(lines, columnLine{text: singleLine(ev.Location), font: e.regular})
	}
	for i, line := range lines {
		f, overflow, err := Fit(e.fonts, line.text, line.font, g.SmallSize, g.LeftWidth)
		if err != nil {
			return nil, err
		}
		if overflow {
			appLog.Warn("layout: line wider than date column", "event_id", ev.ID, "line", line.text)
		}
		lines[i].font = f
	}
	return lines, nil
}

func (e *Engine) timeRange(start, end time.Time) string {
	return e.dates.TimeRange(start, end.In(start.Location()))
}

// singleLine folds a multi-line location into one line.
func singleLine(s string) string {
	return strings.Join(strings.Fields(model.CleanText(s)), " ")
}

// drawLine skips blank lines; they still take up their line height.
func drawLine(c Canvas, x, y float64, f Font, col color.RGBA, s string) error {
	if s == "" {
		return nil
	}
	return c.DrawText(x, y, f, col, s)
}
