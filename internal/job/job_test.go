package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"agendacal/internal/config"
	"agendacal/internal/ics"
	"agendacal/internal/layout"
	appLog "agendacal/internal/log"
	"agendacal/internal/model"
)

var today = time.Date(2023, 1, 14, 9, 30, 0, 0, time.UTC)

const eventsJSON = `[
  {"id": "j1", "title": "Gottesdienst", "start": "2023-01-15T10:00:00Z", "end": "2023-01-15T11:00:00Z", "location": "Hauptkirche"},
  {"id": "j2", "title": "Bibelkreis", "start": "2023-01-17T19:00:00Z", "end": "2023-01-17T20:30:00Z", "information": "Thema: Psalmen"}
]`

const parishICS = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:-//agendacal//test//EN\r\n" +
	"BEGIN:VEVENT\r\nUID:chor\r\nSUMMARY:Chorprobe\r\nDTSTART:20230116T180000Z\r\nDTEND:20230116T193000Z\r\n" +
	"RRULE:FREQ=WEEKLY;COUNT=3\r\nEND:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	eventsPath := filepath.Join(dir, "events.json")
	if err := os.WriteFile(eventsPath, []byte(eventsJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	icsPath := filepath.Join(dir, "gemeinde.ics")
	if err := os.WriteFile(icsPath, []byte(parishICS), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.EventsFile = eventsPath
	cfg.Sources = []ics.Source{{ID: "1", Path: icsPath}}
	cfg.OutputDir = filepath.Join(dir, "out")
	cfg.Notes = map[string]string{"j2": "Bitte Bibel mitbringen\r\nTee gibt es vor Ort"}
	return cfg
}

func TestRunWritesPDF(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview = config.PreviewConfig{Enabled: true, Scale: 0.5}

	res, err := Run(context.Background(), cfg, today)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cfg.OutputDir, "2023-01-14_Termine.pdf"); res.PDFPath != want {
		t.Errorf("pdf path = %q, want %q", res.PDFPath, want)
	}
	if res.Stats.Events != 4 { // 2 JSON + 2 chor instances inside the 14 day horizon
		t.Errorf("events = %d, want 4", res.Stats.Events)
	}

	data, err := os.ReadFile(res.PDFPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Error("output is not a PDF")
	}

	f, err := os.Open(res.PreviewPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if w := img.Bounds().Dx(); w != int(cfg.Page.Width*0.5) {
		t.Errorf("preview width = %d", w)
	}

	leftovers, _ := filepath.Glob(filepath.Join(cfg.OutputDir, ".agendacal-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestRunBackgroundImage(t *testing.T) {
	cfg := testConfig(t)

	img := image.NewNRGBA(image.Rect(0, 0, 64, 36))
	for y := 0; y < 36; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.NRGBA{0x20, 0x40, uint8(x * 4), 0xff})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	cfg.BackgroundImage = filepath.Join(t.TempDir(), "bg.png")
	if err := os.WriteFile(cfg.BackgroundImage, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Run(context.Background(), cfg, today); err != nil {
		t.Fatal(err)
	}
}

func TestRunUndecodableBackground(t *testing.T) {
	cfg := testConfig(t)
	cfg.BackgroundImage = filepath.Join(t.TempDir(), "bg.png")
	if err := os.WriteFile(cfg.BackgroundImage, []byte("not an image"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), cfg, today)
	var ae *layout.AssetError
	if !errors.As(err, &ae) {
		t.Fatalf("got %v, want AssetError", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, FileName(today))); !os.IsNotExist(statErr) {
		t.Error("document written despite asset failure")
	}
}

func TestRunReportsBadEvent(t *testing.T) {
	cfg := testConfig(t)
	bad := `[{"id": "x9", "title": "Kaputt", "start": "morgen"}]`
	if err := os.WriteFile(cfg.EventsFile, []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), cfg, today)
	var ie *model.InputError
	if !errors.As(err, &ie) || ie.EventID != "x9" {
		t.Fatalf("got %v, want InputError for x9", err)
	}
}

func TestRunCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Run(ctx, cfg, today); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestRunTimeoutWritesNothing(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sources = nil
	cfg.Timeout = 50 * time.Millisecond

	var b strings.Builder
	b.WriteString("[")
	for i := 0; i < 3000; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		start := today.Add(time.Duration(i) * 10 * time.Minute)
		fmt.Fprintf(&b, `{"id": "e%d", "title": "Termin %d", "start": %q, "end": %q, "location": "Saal", "information": "Raum %d"}`,
			i, i, start.Format(time.RFC3339), start.Add(30*time.Minute).Format(time.RFC3339), i)
	}
	b.WriteString("]")
	if err := os.WriteFile(cfg.EventsFile, []byte(b.String()), 0o600); err != nil {
		t.Fatal(err)
	}

	rendered := make(chan struct{})
	testHookRenderDone = func() { close(rendered) }
	defer func() { testHookRenderDone = func() {} }()

	if _, err := Run(context.Background(), cfg, today); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
	select {
	case <-rendered:
	case <-time.After(2 * time.Minute):
		t.Fatal("render goroutine never finished")
	}

	entries, _ := os.ReadDir(cfg.OutputDir)
	if len(entries) != 0 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("files written after timeout: %v", names)
	}
}

func TestRunFailedPreviewWriteLeavesNoPDF(t *testing.T) {
	cfg := testConfig(t)
	cfg.Preview = config.PreviewConfig{Enabled: true, Scale: 0.5}

	// A directory in place of the preview makes its rename fail.
	preview := filepath.Join(cfg.OutputDir, strings.TrimSuffix(FileName(today), ".pdf")+".png")
	if err := os.MkdirAll(filepath.Join(preview, "keep"), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := Run(context.Background(), cfg, today)
	var re *layout.RenderError
	if !errors.As(err, &re) || re.Stage != layout.StageFinalize {
		t.Fatalf("got %v, want finalize RenderError", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.OutputDir, FileName(today))); !os.IsNotExist(statErr) {
		t.Error("pdf left behind after preview failed")
	}
	leftovers, _ := filepath.Glob(filepath.Join(cfg.OutputDir, ".agendacal-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestRunWarnsAboutMissingGlyphs(t *testing.T) {
	cfg := testConfig(t)
	cfg.Locale = "ko"

	var buf bytes.Buffer
	appLog.SetOutput(&buf)
	defer appLog.SetOutput(os.Stderr)

	if _, err := Run(context.Background(), cfg, today); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[WARN] job: date font lacks glyphs for locale") {
		t.Errorf("no glyph warning in log:\n%s", buf.String())
	}

	buf.Reset()
	cfg.Locale = "en"
	if _, err := Run(context.Background(), cfg, today); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "lacks glyphs") {
		t.Errorf("unexpected glyph warning for en:\n%s", buf.String())
	}
}

func TestAttachNotes(t *testing.T) {
	cfg := testConfig(t)
	events := []model.CalendarEvent{
		{ID: "j1", Information: "Predigt"},
		{ID: "j2", Information: "Thema: Psalmen"},
	}
	attachNotes(events, cfg)

	got := []string{events[0].ResolvedText(), events[1].ResolvedText()}
	want := []string{"Predigt", "Bitte Bibel mitbringen\nTee gibt es vor Ort"}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("resolved text (-want +got):\n%s", d)
	}
}

func TestFileName(t *testing.T) {
	if got := FileName(today); got != "2023-01-14_Termine.pdf" {
		t.Errorf("FileName = %q", got)
	}
}
