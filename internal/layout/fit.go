package layout

// Fit shrinks f until s is no wider than maxWidth, but not below minSize.
// It reports whether s still overflows at the returned size.
func Fit(m Measurer, s string, f Font, minSize, maxWidth float64) (Font, bool, error) {
	w, err := m.Width(f.Name, f.Size, s)
	if err != nil {
		return f, false, err
	}
	// Widths scale linearly with size; the extra steps absorb rounding.
	for i := 0; i < 8 && w > maxWidth && f.Size > minSize; i++ {
		f.Size = max(minSize, f.Size*maxWidth/w*0.999)
		w, err = m.Width(f.Name, f.Size, s)
		if err != nil {
			return f, false, err
		}
	}
	return f, w > maxWidth, nil
}

// columnLine is one line of the date/time/location column.
type columnLine struct {
	text string
	font Font
}
