package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// eventJSON is the wire form of the event list handed over by a retrieval
// collaborator. Timestamps are RFC 3339 strings.
type eventJSON struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Information string `json:"information,omitempty"`
}

// DecodeEvents reads a JSON array of events. Times are converted into loc
// when loc is non-nil. A malformed timestamp yields an *InputError naming
// the offending event.
func DecodeEvents(r io.Reader, loc *time.Location) ([]CalendarEvent, error) {
	var raw []eventJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("model: decode events: %w", err)
	}

	out := make([]CalendarEvent, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, ev := range raw {
		if ev.ID == "" {
			return nil, &InputError{EventID: fmt.Sprintf("#%d", i), Field: "id", Err: errors.New("id is empty")}
		}
		if seen[ev.ID] {
			return nil, &InputError{EventID: ev.ID, Field: "id", Err: errors.New("duplicate id")}
		}
		seen[ev.ID] = true

		start, err := parseTimestamp(ev.Start)
		if err != nil {
			return nil, &InputError{EventID: ev.ID, Field: "start", Err: err}
		}
		end := start
		if ev.End != "" {
			end, err = parseTimestamp(ev.End)
			if err != nil {
				return nil, &InputError{EventID: ev.ID, Field: "end", Err: err}
			}
		}
		if loc != nil {
			start = start.In(loc)
			end = end.In(loc)
		}

		out = append(out, CalendarEvent{
			ID:          ev.ID,
			Title:       ev.Title,
			Start:       start,
			End:         end,
			Location:    ev.Location,
			Notes:       ev.Notes,
			Information: ev.Information,
		})
	}
	return out, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, ErrMissingTime
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
