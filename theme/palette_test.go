package theme

import (
	"strings"
	"testing"
)

func TestDefaultPalette(t *testing.T) {
	p := Default()
	if p.Name != "jp8080" || len(p.Colors) != 11 {
		t.Fatalf("palette %q with %d colors", p.Name, len(p.Colors))
	}
	if p.Lookup(0) != p.Colors[0] || p.Lookup(1) != p.Colors[10] {
		t.Error("endpoints not exact")
	}
}

func TestParseGPL(t *testing.T) {
	src := "GIMP Palette\nColumns: 2\n# comment\n0 0 0\tblack\n200 100 50 orange\nbroken line\n"
	p, err := ParseGPL(strings.NewReader(src), "fallback")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "fallback" || len(p.Colors) != 2 {
		t.Fatalf("got %+v", p)
	}
	if got := p.Lookup(0.5); got != (RGB{100, 50, 25}) {
		t.Errorf("Lookup(0.5) = %v", got)
	}

	if _, err := ParseGPL(strings.NewReader("GIMP Palette\n"), "empty"); err == nil {
		t.Error("empty palette accepted")
	}
}

func TestThemeColors(t *testing.T) {
	th := New(Default())
	if th.BG() == th.Title() {
		t.Error("background and title share a colour")
	}
	if !strings.HasPrefix(string(th.Accent()), "#") {
		t.Errorf("accent = %q", th.Accent())
	}
}
