package widgets

import (
	"strings"
	"testing"

	"jp8080ctl/theme"
)

func TestRenderBarWidth(t *testing.T) {
	th := theme.New(theme.Default())
	for _, norm := range []float64{-1, 0, 0.33, 0.5, 1, 2} {
		bar := RenderBar(th, norm, 10)
		cells := strings.Count(bar, "█") + strings.Count(bar, "░")
		if cells != 10 {
			t.Errorf("norm %v rendered %d cells", norm, cells)
		}
	}
	if got := strings.Count(RenderBar(th, 0.5, 10), "█"); got != 5 {
		t.Errorf("half bar has %d filled cells", got)
	}
	if RenderBar(th, 1, 0) != "" {
		t.Error("zero width bar not empty")
	}
}

func TestRenderOptions(t *testing.T) {
	th := theme.New(theme.Default())
	out := RenderOptions(th, []string{"TRI", "SAW", "SQR"}, 1)
	if strings.Count(out, "●") != 1 || strings.Count(out, "○") != 2 {
		t.Errorf("RenderOptions = %q", out)
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Edit", Keys: []KeyBinding{{"←/→", "adjust"}}},
	})
	if !strings.HasPrefix(out, "Edit\n") || !strings.Contains(out, "adjust") {
		t.Errorf("RenderKeyHelp = %q", out)
	}
}
