package layout

// Block is the measured extent of one event.
type Block struct {
	Title       Wrapped
	Notes       Wrapped
	HasLocation bool

	// left holds the date, time and location lines with the font each
	// was fitted to.
	left []columnLine

	// Height is the rectangle height, from the block top down.
	Height float64
}

// MeasureBlock computes
//
//	top padding + title + max(time/location, notes) + bottom spacing
//
// The title row is at least one large line tall since the date sits next
// to it. Notes get one small line of padding when present.
func MeasureBlock(g Geometry, title, notes Wrapped, hasLocation bool) Block {
	titleHeight := max(title.Height, g.LargeLine)

	timeLocation := g.MediumLine
	if hasLocation {
		timeLocation += g.MediumLine
	}

	var notesHeight float64
	if len(notes.Lines) > 0 {
		notesHeight = notes.Height + g.SmallLine
	}

	return Block{
		Title:       title,
		Notes:       notes,
		HasLocation: hasLocation,
		Height:      g.TopPadding + titleHeight + max(timeLocation, notesHeight) + g.MediumLine,
	}
}

// DrawnHeight is the extent of the text actually drawn below the block
// top: the taller of the two columns, plus the top padding.
func (b Block) DrawnHeight(g Geometry) float64 {
	left := g.LargeLine + g.MediumLine
	if b.HasLocation {
		left += g.MediumLine
	}
	right := max(b.Title.Height, g.LargeLine) + float64(len(b.Notes.Lines))*g.MediumLine
	return g.TopPadding + max(left, right)
}
