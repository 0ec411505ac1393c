package layout

import (
	"bytes"
	"testing"
	"time"

	"agendacal/internal/fonts"
	"agendacal/internal/locale"
	"agendacal/internal/model"
)

func TestFit(t *testing.T) {
	m := newRuneMeasurer()
	f := Font{Name: DefaultBoldFont, Size: 20}

	// 10 runes at 0.5*20 = 100 wide.
	got, overflow, err := Fit(m, "Donnerstag", f, 8, 150)
	if err != nil || overflow || got != f {
		t.Errorf("fitting line changed: %+v, %v, %v", got, overflow, err)
	}

	got, overflow, err = Fit(m, "Donnerstag", f, 8, 80)
	if err != nil || overflow {
		t.Fatalf("overflow %v, err %v", overflow, err)
	}
	if w, _ := m.Width(got.Name, got.Size, "Donnerstag"); w > 80 || got.Size < 15 {
		t.Errorf("size %g gives width %g, want just under 80", got.Size, w)
	}

	got, overflow, err = Fit(m, "Donnerstag", f, 8, 20)
	if err != nil || !overflow || got.Size != 8 {
		t.Errorf("floor: size %g, overflow %v, err %v", got.Size, overflow, err)
	}

	m.failOn = "Donner"
	if _, _, err := Fit(m, "Donnerstag", f, 8, 20); err == nil {
		t.Error("metric failure swallowed")
	}
}

func TestLeftColumnFitsWithGoFonts(t *testing.T) {
	cat := fonts.Default()
	defer cat.Close()

	cases := []struct {
		lang string
		day  time.Time
	}{
		{"de", time.Date(2023, 1, 19, 10, 0, 0, 0, time.UTC)}, // Donnerstag
		{"de", time.Date(2023, 1, 18, 10, 0, 0, 0, time.UTC)}, // Mittwoch
		{"en", time.Date(2023, 1, 18, 10, 0, 0, 0, time.UTC)}, // Wednesday
		{"en", time.Date(2023, 9, 28, 10, 0, 0, 0, time.UTC)}, // Thursday
	}
	for _, tc := range cases {
		e, err := NewEngine(Options{
			Fonts:  cat,
			Config: DefaultConfig(),
			Page:   DefaultPageSize,
			Colors: testColors,
			Dates:  locale.New(tc.lang),
		})
		if err != nil {
			t.Fatal(err)
		}
		g := e.Geometry()
		c := &recordingCanvas{}
		events := []model.CalendarEvent{{
			ID:       "ev",
			Title:    "Gottesdienst",
			Start:    tc.day,
			End:      tc.day.Add(90 * time.Minute),
			Location: "Hauptkirche",
		}}
		if _, err := e.Render(events, nil, c, &bytes.Buffer{}); err != nil {
			t.Fatal(err)
		}

		b := c.blocks()[0]
		left := 0
		for _, txt := range b.texts {
			if txt.x != g.LeftTextX {
				continue
			}
			left++
			w, err := cat.Width(txt.font.Name, txt.font.Size, txt.text)
			if err != nil {
				t.Fatal(err)
			}
			if g.LeftTextX+w > g.RightX+1e-6 {
				t.Errorf("%s %q: ends at %g, title column starts at %g", tc.lang, txt.text, g.LeftTextX+w, g.RightX)
			}
			if txt.font.Size < g.SmallSize-1e-9 {
				t.Errorf("%s %q: size %g below small size %g", tc.lang, txt.text, txt.font.Size, g.SmallSize)
			}
		}
		if left != 3 {
			t.Errorf("%s: %d left column lines, want 3", tc.lang, left)
		}
		if date := b.texts[0]; date.font.Size > g.LargeSize+1e-9 {
			t.Errorf("date grew to %g", date.font.Size)
		}
	}
}
