package fonts

import (
	"errors"
	"testing"
)

func TestDefaultWidths(t *testing.T) {
	c := Default()
	defer c.Close()

	small, err := c.Width(Regular, 10, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	large, err := c.Width(Regular, 20, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	if small <= 0 {
		t.Fatalf("width = %g", small)
	}
	if d := large - 2*small; d > 0.5 || d < -0.5 {
		t.Errorf("width does not scale with size: %g vs %g", small, large)
	}

	bold, err := c.Width(Bold, 10, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	if bold <= 0 {
		t.Errorf("bold width = %g", bold)
	}

	empty, err := c.Width(Regular, 10, "")
	if err != nil || empty != 0 {
		t.Errorf("empty width = %g, %v", empty, err)
	}
}

func TestUnknownFont(t *testing.T) {
	c := Default()
	_, err := c.Width("Bahnschrift", 12, "x")
	if !errors.Is(err, ErrUnknownFont) {
		t.Errorf("got %v, want ErrUnknownFont", err)
	}
	if _, err := c.Data("Bahnschrift"); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("Data: got %v", err)
	}
}

func TestRegisterRejectsGarbage(t *testing.T) {
	c := NewCatalog()
	if err := c.Register("broken", []byte("not a font")); err == nil {
		t.Error("garbage font accepted")
	}
	if c.Has("broken") {
		t.Error("broken font registered")
	}
}

func TestFaceCache(t *testing.T) {
	c := Default()
	defer c.Close()
	a, err := c.Face(Bold, 12)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := c.Face(Bold, 12)
	if a != b {
		t.Error("face not cached")
	}
}

func TestRegisterReplacesCachedFaces(t *testing.T) {
	c := Default()
	defer c.Close()

	before, err := c.Width(Regular, 12, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	bold, err := c.Width(Bold, 12, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := c.Data(Bold)
	if err := c.Register(Regular, data); err != nil {
		t.Fatal(err)
	}
	after, err := c.Width(Regular, 12, "Gottesdienst")
	if err != nil {
		t.Fatal(err)
	}
	if after != bold {
		t.Errorf("width after re-register = %g, want bold width %g (was %g)", after, bold, before)
	}
}

func TestCovers(t *testing.T) {
	c := Default()
	defer c.Close()

	cases := map[string]bool{
		"Donnerstag, 19.01.2023": true,
		"Größe ÄÖÜ":              true,
		"2023. 1. 15. (일요일)":     false,
		"":                       true,
	}
	for s, want := range cases {
		got, err := c.Covers(Bold, s)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("Covers(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := c.Covers("Bahnschrift", "x"); !errors.Is(err, ErrUnknownFont) {
		t.Errorf("unknown font: got %v", err)
	}
}
