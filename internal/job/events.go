package job

import (
	"context"
	"fmt"
	"os"
	"time"

	"agendacal/internal/config"
	"agendacal/internal/ics"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// loadEvents collects events from the ICS sources and the JSON events
// file, then attaches configured notes.
func loadEvents(ctx context.Context, cfg *config.Config, loc *time.Location, now time.Time) ([]model.CalendarEvent, error) {
	var events []model.CalendarEvent

	if len(cfg.Sources) > 0 {
		from := startOfDay(now.In(loc))
		evs, err := ics.LoadEvents(ctx, cfg.Sources, ics.ExpandConfig{
			Location:   loc,
			RangeStart: from,
			RangeEnd:   from.AddDate(0, 0, cfg.HorizonDays),
		})
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	if cfg.EventsFile != "" {
		f, err := os.Open(cfg.EventsFile)
		if err != nil {
			return nil, fmt.Errorf("job: events file: %w", err)
		}
		evs, err := model.DecodeEvents(f, loc)
		f.Close()
		if err != nil {
			return nil, err
		}
		events = append(events, evs...)
	}

	attachNotes(events, cfg)
	return events, nil
}

// attachNotes replaces an event's notes with the configured text.
func attachNotes(events []model.CalendarEvent, cfg *config.Config) {
	attached := 0
	for i := range events {
		if n, ok := cfg.Note(events[i].ID); ok {
			events[i].Notes = model.CleanText(n)
			attached++
		}
	}
	if attached > 0 {
		appLog.Debug("job: notes attached", "count", attached)
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
