package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jp8080ctl/config"
	"jp8080ctl/debug"
	"jp8080ctl/midi"
	"jp8080ctl/params"
	"jp8080ctl/processor"
	"jp8080ctl/state"
	"jp8080ctl/theme"
	"jp8080ctl/widgets"
)

// Adjustment steps for CC parameters, in normalized units
const (
	fineStep   = 1.0 / 127
	coarseStep = 8.0 / 127
)

const logLines = 8

type inputMode int

const (
	inputNone inputMode = iota
	inputSaveName
)

type Model struct {
	Store  *state.Store
	Proc   *processor.Processor
	Theme  *theme.Theme
	Config *config.Config

	section  params.Section
	row      int
	showHelp bool
	quitting bool
	status   string

	mode        inputMode
	inputBuffer string
}

type UpdateMsg struct{}

func NewModel(store *state.Store, proc *processor.Processor, th *theme.Theme, cfg *config.Config) Model {
	return Model{
		Store:  store,
		Proc:   proc,
		Theme:  th,
		Config: cfg,
	}
}

func ListenForUpdates(proc *processor.Processor) tea.Cmd {
	return func() tea.Msg {
		<-proc.UpdateChan
		return UpdateMsg{}
	}
}

func (m Model) Init() tea.Cmd {
	return ListenForUpdates(m.Proc)
}

// Selected returns the parameter under the cursor
func (m Model) Selected() params.ID {
	ids := params.InSection(m.section)
	if len(ids) == 0 {
		return 0
	}
	return ids[min(m.row, len(ids)-1)]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != inputNone {
			return m.handleInput(msg)
		}
		return m.handleKey(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Proc)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "tab":
		m.section = (m.section + 1) % params.NumSections
		m.row = 0
	case "shift+tab":
		m.section = (m.section + params.NumSections - 1) % params.NumSections
		m.row = 0

	case "up", "k":
		if m.row > 0 {
			m.row--
		}
	case "down", "j":
		if m.row < len(params.InSection(m.section))-1 {
			m.row++
		}

	case "left", "h":
		m.adjust(-1, false)
	case "right", "l":
		m.adjust(1, false)
	case "H", "shift+left":
		m.adjust(-1, true)
	case "L", "shift+right":
		m.adjust(1, true)

	case "[":
		bank, program := m.Store.Patch()
		m.Store.SetPatch(bank, program-1)
	case "]":
		bank, program := m.Store.Patch()
		m.Store.SetPatch(bank, program+1)
	case "{":
		bank, program := m.Store.Patch()
		m.Store.SetPatch((bank+params.NumBanks-1)%params.NumBanks, program)
	case "}":
		bank, program := m.Store.Patch()
		m.Store.SetPatch((bank+1)%params.NumBanks, program)

	case "<", ",":
		m.Store.SetChannel(m.Store.Channel() - 1)
	case ">", ".":
		m.Store.SetChannel(m.Store.Channel() + 1)

	case "p":
		if m.Proc.Part() == midi.PartUpper {
			m.Proc.SetPart(midi.PartLower)
		} else {
			m.Proc.SetPart(midi.PartUpper)
		}
		m.status = fmt.Sprintf("SysEx now targets the %s part", m.Proc.Part())

	case "a":
		m.Proc.SendAll()
		m.status = "sending all parameters"

	case "s":
		m.mode = inputSaveName
		m.inputBuffer = m.Store.Name()

	case "o":
		filename, err := state.LoadPatch(m.Store, "")
		if err != nil {
			m.status = "load failed: " + err.Error()
			break
		}
		m.status = "loaded " + filename

	case "d":
		m.Store.Defaults()
		m.status = "defaults restored"

	case "?":
		m.showHelp = !m.showHelp
	}

	return m, nil
}

func (m Model) handleInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = inputNone
		m.inputBuffer = ""
	case tea.KeyEnter:
		m.mode = inputNone
		filename, err := state.SavePatch(m.Store, strings.TrimSpace(m.inputBuffer))
		m.inputBuffer = ""
		if err != nil {
			m.status = "save failed: " + err.Error()
			break
		}
		m.status = "saved " + filename
		if m.Config != nil {
			m.Config.UI.LastPatch = filename
			if err := m.Config.Save(); err != nil {
				debug.Warn("tui", "save config: %v", err)
			}
		}
	case tea.KeyBackspace:
		if len(m.inputBuffer) > 0 {
			r := []rune(m.inputBuffer)
			m.inputBuffer = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.inputBuffer += " "
	case tea.KeyRunes:
		m.inputBuffer += string(msg.Runes)
	}
	return m, nil
}

// adjust moves the selected parameter by one step in dir
func (m Model) adjust(dir float64, coarse bool) {
	id := m.Selected()
	p := params.Get(id)
	if p.IsChoice() {
		m.Store.Nudge(id, dir)
		return
	}
	step := fineStep
	if coarse {
		step = coarseStep
	}
	m.Store.Nudge(id, dir*step)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Title()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	statusStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(m.headerLine()))
	out.WriteString("\n\n")
	out.WriteString(m.sectionTabs())
	out.WriteString("\n\n")
	out.WriteString(m.paramRows())
	out.WriteString("\n\n")
	out.WriteString(m.eventLog())
	out.WriteString("\n")

	switch {
	case m.mode == inputSaveName:
		out.WriteString(statusStyle.Render("save as: " + m.inputBuffer + "_"))
	case m.status != "":
		out.WriteString(statusStyle.Render(m.status))
	}
	out.WriteString("\n")

	if m.showHelp {
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(keyHelp)))
	} else {
		out.WriteString(dimStyle.Render("tab:section  ↑↓:select  ←→:adjust  [ ]:program  { }:bank  < >:channel  a:send all  s:save  ?:help  q:quit"))
	}

	return out.String()
}

func (m Model) headerLine() string {
	bank, program := m.Store.Patch()
	port := m.Store.Device()
	if port == "" {
		port = "(no port)"
	}
	stats := m.Proc.Stats()
	name := m.Store.Name()
	if name == "" {
		name = "untitled"
	}
	return fmt.Sprintf("jp8080ctl  %s  ch:%d  %s %s  part:%s  %s  sent:%d failed:%d",
		port, m.Store.Channel(), bank, params.ProgramLabel(program), m.Proc.Part(), name, stats.Sent, stats.Failed)
}

func (m Model) sectionTabs() string {
	active := lipgloss.NewStyle().Foreground(m.Theme.BG()).Background(m.Theme.Accent()).Padding(0, 1)
	inactive := lipgloss.NewStyle().Foreground(m.Theme.FG()).Background(m.Theme.Surface()).Padding(0, 1)

	tabs := make([]string, 0, params.NumSections)
	for s := params.Section(0); s < params.NumSections; s++ {
		if s == m.section {
			tabs = append(tabs, active.Render(s.String()))
		} else {
			tabs = append(tabs, inactive.Render(s.String()))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) paramRows() string {
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor())
	nameStyle := lipgloss.NewStyle().Foreground(m.Theme.FG()).Width(22)
	valueStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent()).Width(5).Align(lipgloss.Right)

	selected := m.Selected()
	var lines []string
	for _, id := range params.InSection(m.section) {
		p := params.Get(id)
		v := m.Store.Get(id)

		cursor := " "
		if id == selected {
			cursor = cursorStyle.Render(string(m.Theme.Symbols.Cursor))
		}

		var control, value string
		if p.IsChoice() {
			control = widgets.RenderOptions(m.Theme, p.Options, int(v))
		} else {
			control = widgets.RenderBar(m.Theme, v, 32)
			value = fmt.Sprintf("%d", int(v*127+0.5))
		}
		lines = append(lines, fmt.Sprintf("%s %s %s %s", cursor, nameStyle.Render(p.Name), valueStyle.Render(value), control))
	}
	return strings.Join(lines, "\n")
}

func (m Model) eventLog() string {
	sentStyle := lipgloss.NewStyle().Foreground(m.Theme.Active())
	errStyle := lipgloss.NewStyle().Foreground(m.Theme.Error())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	hist := m.Proc.History()
	if len(hist) > logLines {
		hist = hist[len(hist)-logLines:]
	}

	lines := []string{dimStyle.Render("recent MIDI")}
	for _, r := range hist {
		text := midi.DescribeMessage(r.Event.Bytes())
		if r.Err != nil {
			lines = append(lines, errStyle.Render(fmt.Sprintf("%c %s (%v)", m.Theme.Symbols.Failed, text, r.Err)))
			continue
		}
		lines = append(lines, sentStyle.Render(fmt.Sprintf("%c %s", m.Theme.Symbols.Sent, text)))
	}
	for len(lines) < logLines+1 {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

var keyHelp = []widgets.KeySection{
	{Title: "Navigate", Keys: []widgets.KeyBinding{
		{Key: "tab/S-tab", Desc: "next/previous section"},
		{Key: "↑↓ / jk", Desc: "select parameter"},
	}},
	{Title: "Edit", Keys: []widgets.KeyBinding{
		{Key: "←→ / hl", Desc: "adjust (choices cycle)"},
		{Key: "HL", Desc: "coarse adjust"},
		{Key: "d", Desc: "restore defaults"},
	}},
	{Title: "Patch", Keys: []widgets.KeyBinding{
		{Key: "[ ]", Desc: "program down/up"},
		{Key: "{ }", Desc: "bank down/up"},
		{Key: "s / o", Desc: "save / load latest"},
	}},
	{Title: "MIDI", Keys: []widgets.KeyBinding{
		{Key: "< >", Desc: "channel down/up"},
		{Key: "p", Desc: "toggle upper/lower part"},
		{Key: "a", Desc: "send all parameters"},
	}},
}
