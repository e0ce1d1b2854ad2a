package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Value bars
	BarFull  rune // █ filled cell
	BarEmpty rune // ░ unfilled cell

	// Choice options
	OptionOn  rune // ● selected option
	OptionOff rune // ○ other options

	Cursor rune // ▶ row under cursor
	Sent   rune // → outgoing event
	Failed rune // ✗ failed event
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			BarFull:  '█',
			BarEmpty: '░',

			OptionOn:  '●',
			OptionOff: '○',

			Cursor: '▶',
			Sent:   '→',
			Failed: '✗',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0 // panel black
	RoleSurface = 0.1 // surface
	RoleMuted   = 0.2 // steel
	RoleFG      = 0.4 // silver (readable)
	RoleAccent  = 0.5 // led cyan
	RoleActive  = 0.6 // led green
	RoleCursor  = 0.7 // amber
	RoleWarning = 0.8 // orange
	RoleError   = 0.9 // red
	RoleTitle   = 1.0 // warm white
)

func (t *Theme) BG() lipgloss.Color {
	return t.role(RoleBG)
}

func (t *Theme) Surface() lipgloss.Color {
	return t.role(RoleSurface)
}

func (t *Theme) FG() lipgloss.Color {
	return t.role(RoleFG)
}

func (t *Theme) Accent() lipgloss.Color {
	return t.role(RoleAccent)
}

func (t *Theme) Muted() lipgloss.Color {
	return t.role(RoleMuted)
}

func (t *Theme) Active() lipgloss.Color {
	return t.role(RoleActive)
}

func (t *Theme) Cursor() lipgloss.Color {
	return t.role(RoleCursor)
}

func (t *Theme) Warning() lipgloss.Color {
	return t.role(RoleWarning)
}

func (t *Theme) Error() lipgloss.Color {
	return t.role(RoleError)
}

func (t *Theme) Title() lipgloss.Color {
	return t.role(RoleTitle)
}

// Color returns the palette colour for a normalized value 0-1, used to
// tint value bars by level.
func (t *Theme) Color(norm float64) lipgloss.Color {
	return t.role(norm)
}

func (t *Theme) role(pos float64) lipgloss.Color {
	c := t.Palette.Lookup(pos)
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
