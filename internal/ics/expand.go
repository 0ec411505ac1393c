package ics

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/teambition/rrule-go"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

const defaultMaxOccurrences = 5000

// instanceKey is appended to the ID of each recurrence instance.
const instanceKey = "20060102T1504"

// ExpandConfig controls recurrence expansion.
type ExpandConfig struct {
	// Location all occurrences are converted to. Nil means time.Local.
	Location *time.Location

	// RangeStart and RangeEnd bound the occurrences, inclusive.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrences caps the instances produced per series. Zero means
	// defaultMaxOccurrences.
	MaxOccurrences int
}

// Expand turns parsed VEVENTs into calendar events inside the window.
// Series are expanded with their RRULE and EXDATEs and overridden
// instances replaced by their RECURRENCE-ID counterparts. The result is
// ordered by start; IDs are unique.
func Expand(events []VEvent, cfg ExpandConfig) ([]model.CalendarEvent, error) {
	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return nil, errors.New("ics: range end before range start")
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxOccurrences <= 0 {
		cfg.MaxOccurrences = defaultMaxOccurrences
	}

	type key struct{ source, uid string }
	var order []key
	bases := make(map[key][]VEvent)
	overrides := make(map[key][]VEvent)
	for _, ev := range events {
		k := key{ev.Source.ID, ev.UID}
		if ev.IsOverride() {
			overrides[k] = append(overrides[k], ev)
			continue
		}
		if _, seen := bases[k]; !seen {
			order = append(order, k)
		}
		bases[k] = append(bases[k], ev)
	}

	var out []model.CalendarEvent
	for _, k := range order {
		for _, ev := range bases[k] {
			if ev.RRule == "" {
				if overlaps(ev.Start, ev.End, cfg.RangeStart, cfg.RangeEnd) {
					out = append(out, toEvent(ev, ev.Start, ev.End, "", cfg.Location))
				}
				continue
			}
			occ, err := expandSeries(ev, overrides[k], cfg)
			if err != nil {
				appLog.Warn("ics: skipping series", "source", ev.Source.ID, "uid", ev.UID, "err", err.Error())
				continue
			}
			out = append(out, occ...)
		}
	}

	slices.SortStableFunc(out, func(a, b model.CalendarEvent) int {
		return a.Start.Compare(b.Start)
	})
	uniqueIDs(out)
	return out, nil
}

func expandSeries(ev VEvent, overrides []VEvent, cfg ExpandConfig) ([]model.CalendarEvent, error) {
	r, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("RRULE %q: %w", ev.RRule, err)
	}
	r.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	// Instances that started before the window but still run into it count.
	dur := ev.End.Sub(ev.Start)
	from := cfg.RangeStart.Add(-dur).In(ev.Start.Location())
	to := cfg.RangeEnd.In(ev.Start.Location())
	starts := set.Between(from, to, true)
	if len(starts) > cfg.MaxOccurrences {
		appLog.Warn("ics: series truncated", "source", ev.Source.ID, "uid", ev.UID, "cap", cfg.MaxOccurrences)
		starts = starts[:cfg.MaxOccurrences]
	}

	out := make([]model.CalendarEvent, 0, len(starts))
	for _, start := range starts {
		inst, end := ev, start.Add(dur)
		if ev.AllDay {
			start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
			end = start.AddDate(0, 0, 1)
		}
		suffix := start.In(cfg.Location).Format(instanceKey)
		if o, ok := findOverride(overrides, start); ok {
			inst, start, end = o, o.Start, o.End
		}
		out = append(out, toEvent(inst, start, end, suffix, cfg.Location))
	}
	return out, nil
}

func findOverride(overrides []VEvent, start time.Time) (VEvent, bool) {
	for _, o := range overrides {
		if o.Recurrence != nil && o.Recurrence.Equal(start) {
			return o, true
		}
	}
	return VEvent{}, false
}

func toEvent(ev VEvent, start, end time.Time, suffix string, loc *time.Location) model.CalendarEvent {
	id := ev.Source.ID + "_" + ev.UID
	if suffix != "" {
		id += "_" + suffix
	}
	return model.CalendarEvent{
		ID:          id,
		Title:       ev.Summary,
		Start:       start.In(loc),
		End:         end.In(loc),
		Location:    ev.Location,
		Information: ev.Description,
	}
}

// uniqueIDs appends _2, _3, ... to repeated IDs in order of appearance.
func uniqueIDs(events []model.CalendarEvent) {
	seen := make(map[string]int, len(events))
	for i := range events {
		id := events[i].ID
		seen[id]++
		if n := seen[id]; n > 1 {
			events[i].ID = fmt.Sprintf("%s_%d", id, n)
		}
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}
