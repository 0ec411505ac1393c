package layout

import "strings"

// Measurer returns the rendered width of s in the named font at size
// points.
type Measurer interface {
	Width(font string, size float64, s string) (float64, error)
}

// Font selects a registered font at a size in points.
type Font struct {
	Name string
	Size float64
}

// Wrapped is the result of Wrap.
type Wrapped struct {
	Lines  []string
	Height float64

	// Overflow is set when a single word is wider than the column and was
	// placed on its own line anyway.
	Overflow bool
}

// Wrap breaks text into lines no wider than maxWidth. Newlines are hard
// breaks. Within a segment words are added greedily; a word wider than
// maxWidth is not split and ends up alone on its line.
func Wrap(m Measurer, text string, f Font, lineHeight, maxWidth float64) (Wrapped, error) {
	var w Wrapped
	if text == "" {
		return w, nil
	}
	for _, seg := range strings.Split(text, "\n") {
		lines, overflow, err := wrapSegment(m, seg, f, maxWidth)
		if err != nil {
			return Wrapped{}, err
		}
		w.Lines = append(w.Lines, lines...)
		w.Overflow = w.Overflow || overflow
	}
	w.Height = lineHeight * float64(len(w.Lines))
	return w, nil
}

func wrapSegment(m Measurer, seg string, f Font, maxWidth float64) ([]string, bool, error) {
	if strings.TrimSpace(seg) == "" {
		return []string{""}, false, nil
	}
	width, err := m.Width(f.Name, f.Size, seg)
	if err != nil {
		return nil, false, err
	}
	if width <= maxWidth {
		return []string{seg}, false, nil
	}

	words := strings.Fields(seg)
	var lines []string
	overflow := false

	// closeLine records line; a line that was never extended is a single
	// word and may be wider than the column.
	closeLine := func(line string, extended bool) error {
		if !extended {
			lw, err := m.Width(f.Name, f.Size, line)
			if err != nil {
				return err
			}
			if lw > maxWidth {
				overflow = true
			}
		}
		lines = append(lines, line)
		return nil
	}

	line, extended := words[0], false
	for _, word := range words[1:] {
		candidate := line + " " + word
		cw, err := m.Width(f.Name, f.Size, candidate)
		if err != nil {
			return nil, false, err
		}
		if cw <= maxWidth {
			line, extended = candidate, true
			continue
		}
		if err := closeLine(line, extended); err != nil {
			return nil, false, err
		}
		line, extended = word, false
	}
	if err := closeLine(line, extended); err != nil {
		return nil, false, err
	}
	return lines, overflow, nil
}
