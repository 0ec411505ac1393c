package ics

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

// Source is one local calendar file.
type Source struct {
	// ID prefixes the IDs of the events read from this source.
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// LoadResult is the raw content of one source.
type LoadResult struct {
	Source Source
	Body   []byte
}

// LoadAll reads every source. Sources that cannot be read are logged and
// reported in the error slice; the others are returned.
func LoadAll(ctx context.Context, sources []Source) ([]LoadResult, []error) {
	results := make([]LoadResult, 0, len(sources))
	var errs []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return results, append(errs, err)
		}
		res, err := LoadOne(src)
		if err != nil {
			appLog.Error("ics: load failed", err, "source", src.ID, "path", src.Path)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errs
}

// LoadOne reads a single source file.
func LoadOne(src Source) (LoadResult, error) {
	if src.Path == "" {
		return LoadResult{}, fmt.Errorf("ics: source %q has no path", src.ID)
	}
	body, err := os.ReadFile(src.Path)
	if err != nil {
		return LoadResult{}, fmt.Errorf("ics: source %q: %w", src.ID, err)
	}
	return LoadResult{Source: src, Body: body}, nil
}

// LoadEvents reads, parses and expands all sources. It fails only when no
// source could be used at all.
func LoadEvents(ctx context.Context, sources []Source, cfg ExpandConfig) ([]model.CalendarEvent, error) {
	start := time.Now()
	results, errs := LoadAll(ctx, sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var parsed []VEvent
	usable := 0
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body, cfg.Location)
		if err != nil {
			appLog.Error("ics: parse failed", err, "source", res.Source.ID)
			errs = append(errs, err)
			continue
		}
		usable++
		parsed = append(parsed, evs...)
	}
	if usable == 0 && len(sources) > 0 {
		return nil, fmt.Errorf("ics: no usable source: %w", errors.Join(errs...))
	}

	events, err := Expand(parsed, cfg)
	if err != nil {
		return nil, err
	}
	appLog.Info("ics: events loaded",
		"sources", usable,
		"failed", len(errs),
		"events", len(events),
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
	return events, nil
}
