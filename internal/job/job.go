// Package job runs one render: it loads events and assets, lays them out
// and writes the resulting files.
package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"agendacal/internal/config"
	"agendacal/internal/fonts"
	"agendacal/internal/layout"
	"agendacal/internal/locale"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
	"agendacal/internal/pdfcanvas"
	"agendacal/internal/raster"
)

const creator = "agendacal"

// Result describes the files a successful run wrote.
type Result struct {
	PDFPath     string
	PreviewPath string
	Stats       layout.Stats
}

// FileName is the name of the document rendered on day t.
func FileName(t time.Time) string {
	return t.Format("2006-01-02") + "_Termine.pdf"
}

// Run renders the configured events into cfg.OutputDir. The render itself
// is not interruptible; when ctx ends first, Run returns ctx.Err() and the
// result of the render is discarded.
func Run(ctx context.Context, cfg *config.Config, now time.Time) (Result, error) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res, err := run(ctx, cfg, now)
	if err != nil {
		logFailure(err)
		return Result{}, err
	}
	appLog.Info("render completed",
		"file", res.PDFPath,
		"pages", res.Stats.Pages,
		"events", res.Stats.Events,
		"took", time.Since(start).Round(time.Millisecond).String(),
	)
	return res, nil
}

func run(ctx context.Context, cfg *config.Config, now time.Time) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return Result{}, fmt.Errorf("job: timezone: %w", err)
	}
	colors, err := model.ParseColorScheme(cfg.Colors)
	if err != nil {
		return Result{}, &layout.RenderError{Stage: layout.StageSetup, Err: err}
	}

	events, err := loadEvents(ctx, cfg, loc, now)
	if err != nil {
		return Result{}, err
	}

	bg, err := loadBackground(cfg.BackgroundImage)
	if err != nil {
		return Result{}, &layout.RenderError{Stage: layout.StageSetup, Err: err}
	}

	type outcome struct {
		out output
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := render(cfg, events, bg, colors, now.In(loc))
		done <- outcome{out, err}
		testHookRenderDone()
	}()

	var o outcome
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case o = <-done:
	}
	if o.err != nil {
		return Result{}, o.err
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := writeFiles(o.out.files); err != nil {
		return Result{}, &layout.RenderError{Stage: layout.StageFinalize, Err: err}
	}
	res := Result{PDFPath: o.out.files[0].path, Stats: o.out.stats}
	if len(o.out.files) > 1 {
		res.PreviewPath = o.out.files[1].path
	}
	return res, nil
}

// testHookRenderDone runs after the render goroutine has delivered its
// outcome, whether or not anyone is still waiting for it.
var testHookRenderDone = func() {}

// artifact is a rendered file that has not been written yet.
type artifact struct {
	path string
	data []byte
}

// output holds everything a render produced. The PDF comes first in files.
type output struct {
	stats layout.Stats
	files []artifact
}

// render lays out the events once for the PDF and, if enabled, once more
// for the preview. It only produces bytes; nothing touches the disk. Each
// run gets its own catalog and engine.
func render(cfg *config.Config, events []model.CalendarEvent, bg image.Image, colors model.ColorScheme, day time.Time) (output, error) {
	cat, err := loadFonts(cfg.Fonts)
	if err != nil {
		return output{}, &layout.RenderError{Stage: layout.StageSetup, Err: err}
	}
	defer cat.Close()

	dates := locale.New(cfg.Locale)
	checkGlyphs(cat, dates, day)

	engine, err := layout.NewEngine(layout.Options{
		Fonts:       cat,
		Config:      cfg.Layout,
		Page:        cfg.Page,
		Colors:      colors,
		Dates:       dates,
		RegularFont: fonts.Regular,
		BoldFont:    fonts.Bold,
	})
	if err != nil {
		return output{}, err
	}

	name := FileName(day)
	pdfPath := filepath.Join(cfg.OutputDir, name)
	var doc bytes.Buffer
	canvas := pdfcanvas.New(cfg.Page, cat, pdfcanvas.Options{Title: name, Creator: creator})
	stats, err := engine.Render(events, bg, canvas, &doc)
	if err != nil {
		return output{}, err
	}
	out := output{stats: stats, files: []artifact{{path: pdfPath, data: doc.Bytes()}}}

	if cfg.Preview.Enabled {
		var png bytes.Buffer
		if _, err := engine.Render(events, bg, raster.New(cfg.Page, cfg.Preview.Scale, cat), &png); err != nil {
			return output{}, err
		}
		out.files = append(out.files, artifact{
			path: strings.TrimSuffix(pdfPath, ".pdf") + ".png",
			data: png.Bytes(),
		})
	}
	return out, nil
}

// checkGlyphs warns when the date font cannot draw the weekday names of
// the selected language.
func checkGlyphs(cat *fonts.Catalog, dates *locale.Formatter, day time.Time) {
	for i := 0; i < 7; i++ {
		s := dates.Date(day.AddDate(0, 0, i))
		if ok, err := cat.Covers(fonts.Bold, s); err == nil && !ok {
			appLog.Warn("job: date font lacks glyphs for locale", "locale", dates.Tag().String(), "sample", s)
			return
		}
	}
}

// writeFiles writes all files to temp files first and then renames them
// into place. When a rename fails, files already moved are removed again.
func writeFiles(files []artifact) error {
	tmps := make([]string, 0, len(files))
	defer func() {
		for _, t := range tmps {
			os.Remove(t)
		}
	}()

	for _, f := range files {
		tmp, err := writeTemp(f.path, f.data)
		if err != nil {
			return err
		}
		tmps = append(tmps, tmp)
	}
	for i, f := range files {
		if err := os.Rename(tmps[i], f.path); err != nil {
			for _, moved := range files[:i] {
				os.Remove(moved.path)
			}
			return err
		}
	}
	return nil
}

// writeTemp writes data to a temp file next to path and returns its name.
func writeTemp(path string, data []byte) (string, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(dir, ".agendacal-*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func logFailure(err error) {
	var re *layout.RenderError
	if errors.As(err, &re) {
		appLog.Error("render failed", err, "stage", string(re.Stage), "event_id", re.EventID)
		return
	}
	var ie *model.InputError
	if errors.As(err, &ie) {
		appLog.Error("render failed", err, "stage", string(layout.StageValidate), "event_id", ie.EventID)
		return
	}
	appLog.Error("render failed", err)
}
