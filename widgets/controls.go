package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"jp8080ctl/theme"
)

// RenderBar renders a horizontal value bar of width cells for norm 0-1,
// coloured along the palette by value.
func RenderBar(th *theme.Theme, norm float64, width int) string {
	if width <= 0 {
		return ""
	}
	norm = max(0, min(norm, 1))
	filled := int(norm*float64(width) + 0.5)

	on := lipgloss.NewStyle().Foreground(th.Color(0.4 + norm*0.5))
	off := lipgloss.NewStyle().Foreground(th.Muted())
	return on.Render(strings.Repeat(string(th.Symbols.BarFull), filled)) +
		off.Render(strings.Repeat(string(th.Symbols.BarEmpty), width-filled))
}

// RenderOptions renders a choice parameter's options with the selected one
// highlighted.
func RenderOptions(th *theme.Theme, options []string, selected int) string {
	sel := lipgloss.NewStyle().Foreground(th.Active()).Bold(true)
	other := lipgloss.NewStyle().Foreground(th.Muted())

	parts := make([]string, len(options))
	for i, opt := range options {
		if i == selected {
			parts[i] = sel.Render(fmt.Sprintf("%c %s", th.Symbols.OptionOn, opt))
		} else {
			parts[i] = other.Render(fmt.Sprintf("%c %s", th.Symbols.OptionOff, opt))
		}
	}
	return strings.Join(parts, "  ")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}
