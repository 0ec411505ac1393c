package model

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// CalendarEvent is a single concrete event as handed to the layout engine.
// Recurring events are expanded before they reach this type.
type CalendarEvent struct {
	// ID is a stable unique key, e.g. "<source>_<uid>".
	ID    string
	Title string

	// Start / End carry their display timezone.
	Start time.Time
	End   time.Time

	Location string

	// Notes are user-supplied and take precedence over Information,
	// which usually comes from the calendar itself (DESCRIPTION).
	Notes       string
	Information string
}

// ResolvedText returns the text shown below the title: the notes if any,
// otherwise the event information.
func (e CalendarEvent) ResolvedText() string {
	if strings.TrimSpace(e.Notes) != "" {
		return e.Notes
	}
	return e.Information
}

// Validate reports malformed timestamps.
func (e CalendarEvent) Validate() error {
	if e.Start.IsZero() {
		return &InputError{EventID: e.ID, Field: "start", Err: ErrMissingTime}
	}
	if !e.End.IsZero() && e.End.Before(e.Start) {
		return &InputError{EventID: e.ID, Field: "end", Err: ErrEndBeforeStart}
	}
	return nil
}

// CleanText normalizes line separators (\r\n, \r, U+2028, U+2029) to \n
// and converts the text to NFC so that combining sequences are measured
// like the precomposed glyphs a font will draw.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.NewReplacer("\r", "\n", "\u2028", "\n", "\u2029", "\n").Replace(s)
	return norm.NFC.String(s)
}
