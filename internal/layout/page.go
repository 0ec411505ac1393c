package layout

import (
	"errors"
	"image"

	appLog "agendacal/internal/log"
)

type pageState int

const (
	activePage pageState = iota
	newPageNeeded
)

// PageManager owns the vertical cursor and decides where blocks go.
type PageManager struct {
	canvas     Canvas
	geo        Geometry
	background image.Image

	state  pageState
	cursor float64
	pages  int
	placed int // blocks on the current page
}

func NewPageManager(c Canvas, g Geometry, background image.Image) *PageManager {
	return &PageManager{
		canvas:     c,
		geo:        g,
		background: background,
		state:      newPageNeeded,
	}
}

// Start opens the first page.
func (m *PageManager) Start() error {
	if m.pages != 0 {
		return errors.New("layout: page manager already started")
	}
	return m.openPage()
}

// Reserve decides whether a block of the given height fits below the
// cursor and starts a new page if not. It returns the top edge of the
// block and whether a page break happened. A block taller than the usable
// height is placed at the top of a fresh page.
func (m *PageManager) Reserve(height float64) (top float64, broke bool, err error) {
	if m.pages == 0 {
		return 0, false, errors.New("layout: page manager not started")
	}
	if m.cursor-height < m.geo.Bottom && m.placed > 0 {
		m.state = newPageNeeded
	}
	if m.state == newPageNeeded {
		if err := m.openPage(); err != nil {
			return 0, false, err
		}
		broke = true
	}
	m.placed++
	return m.cursor, broke, nil
}

// Advance moves the cursor down by delta.
func (m *PageManager) Advance(delta float64) {
	m.cursor -= delta
}

// Cursor is the current top of the free space.
func (m *PageManager) Cursor() float64 {
	return m.cursor
}

// Pages is the number of pages begun so far.
func (m *PageManager) Pages() int {
	return m.pages
}

func (m *PageManager) openPage() error {
	if err := m.canvas.BeginPage(); err != nil {
		return err
	}
	if err := drawPageBackground(m.canvas, m.geo.Page, m.background); err != nil {
		return err
	}
	m.pages++
	m.cursor = m.geo.Top
	m.placed = 0
	m.state = activePage
	if m.pages > 1 {
		appLog.Debug("layout: page break", "page", m.pages)
	}
	return nil
}
