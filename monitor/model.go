// Package monitor implements a terminal view of the running sound engine:
// the channel table, engine-tone and traffic voices, and PCM slot activity.
// Keys post commands and drive the engine telemetry.
package monitor

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/user-none/osound/sound"
	"github.com/user-none/osound/ui"
)

// Source is the running engine the monitor watches.
type Source interface {
	Snapshot() ui.Snapshot
	Input() *ui.HostInput
	TogglePause()
}

// refreshInterval is how often the view pulls a new snapshot.
const refreshInterval = 50 * time.Millisecond

// Telemetry steps.
const (
	pitchStep   = 0x0100
	pitchMax    = 0x3FFF
	volumeStep  = 0x04
	volumeMax   = 0x3F
	trafficNear = 0x10
	trafficPan  = 3
)

// commands lists what the picker offers, in command order.
var commands = func() []uint8 {
	var out []uint8
	for c := sound.CmdReset; c <= sound.CmdStopSafetyZone; c++ {
		if c == sound.CmdUFO {
			continue
		}
		out = append(out, uint8(c))
	}
	return out
}()

// Model is the bubbletea model.
type Model struct {
	src  Source
	snap ui.Snapshot

	Width    int
	Height   int
	ShowHelp bool

	cursor  int
	pitch   uint16
	volume  uint8
	traffic bool
	rev     bool

	StatusMsg string
}

// NewModel creates a monitor for src.
func NewModel(src Source) Model {
	pitch, vol := src.Input().PlayerEngine()
	return Model{
		src:    src,
		snap:   src.Snapshot(),
		Width:  120,
		Height: 40,
		pitch:  pitch,
		volume: vol,
		rev:    src.Input().RevEffect(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, refreshCmd())
}

type refreshMsg struct{}

func refreshCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshMsg{}
	})
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case refreshMsg:
		m.snap = m.src.Snapshot()
		return m, refreshCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	in := m.src.Input()

	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit

	case "?":
		m.ShowHelp = !m.ShowHelp

	case " ":
		m.src.TogglePause()

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(commands)-1 {
			m.cursor++
		}

	case "enter":
		m.post(commands[m.cursor])

	case "1", "2", "3", "4":
		m.post(uint8(sound.CmdMusicBreeze) + key[0] - '1')

	case "0":
		m.post(sound.CmdReset)

	case "+", "=":
		m.pitch = min(m.pitch+pitchStep, pitchMax)
		in.SetPlayerEngine(m.pitch, m.volume)

	case "-":
		m.pitch -= min(m.pitch, pitchStep)
		in.SetPlayerEngine(m.pitch, m.volume)

	case "]":
		m.volume = min(m.volume+volumeStep, volumeMax)
		in.SetPlayerEngine(m.pitch, m.volume)

	case "[":
		m.volume -= min(m.volume, volumeStep)
		in.SetPlayerEngine(m.pitch, m.volume)

	case "r":
		m.rev = !m.rev
		in.SetRevEffect(m.rev)
		m.StatusMsg = fmt.Sprintf("Rev effect %s", onOff(m.rev))

	case "t":
		m.traffic = !m.traffic
		if m.traffic {
			in.SetTrafficFX(0, trafficNear, trafficPan)
		} else {
			in.SetTrafficFX(0, 0, 0)
		}
		m.StatusMsg = fmt.Sprintf("Passing car %s", onOff(m.traffic))
	}
	return m, nil
}

func (m *Model) post(cmd uint8) {
	m.src.Input().PostCommand(cmd)
	m.StatusMsg = fmt.Sprintf("Sent %s (0x%02X)", sound.CommandName(cmd), cmd)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5F00AF")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00AFFF"))

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00"))

	suppressedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAF00"))

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#585858"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#444444")).
			Foreground(lipgloss.Color("#FFFFFF"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AFAFAF"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#5F5F87")).
			Padding(0, 1)
)

// View implements tea.Model.
func (m Model) View() string {
	if m.ShowHelp {
		return m.renderHelp()
	}

	var b strings.Builder
	b.WriteString(m.renderTitle())
	b.WriteString("\n")

	left := panelStyle.Render(m.renderChannels())
	right := lipgloss.JoinVertical(lipgloss.Left,
		panelStyle.Render(m.renderCommands()),
		panelStyle.Render(m.renderSynth()),
		panelStyle.Render(m.renderSlots()),
	)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, right))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(m.statusLine()))
	return b.String()
}

func (m Model) renderTitle() string {
	state := "RUNNING"
	if m.snap.Paused {
		state = "PAUSED"
	}
	return titleStyle.Render(fmt.Sprintf("OutRun sound  tick %d  %s", m.snap.Ticks, state))
}

func (m Model) renderChannels() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("CH       FL RT  POS  END  SEQ  CMD NOTE"))
	b.WriteString("\n")
	for id, ch := range m.snap.Channels {
		line := fmt.Sprintf("%-8s %02X %02X %04X %04X %04X  %02X  %02X",
			sound.ChannelID(id), uint8(ch.Flags), uint8(ch.Route),
			ch.SeqPos, ch.SeqEnd, ch.SeqCmd, ch.Command, ch.Note)
		switch {
		case !ch.Enabled():
			line = idleStyle.Render(line)
		case ch.Route&sound.RouteSuppressed != 0:
			line = suppressedStyle.Render(line)
		default:
			line = activeStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// commandWindow is how many picker rows are visible.
const commandWindow = 8

func (m Model) renderCommands() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("COMMANDS"))
	b.WriteString("\n")

	top := max(0, min(m.cursor-commandWindow/2, len(commands)-commandWindow))
	for i := top; i < min(top+commandWindow, len(commands)); i++ {
		line := fmt.Sprintf("%02X %-20s", commands[i], sound.CommandName(commands[i]))
		if i == m.cursor {
			line = cursorStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderSynth() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("ENGINE   FL PITCH VOL  L  R  DLT"))
	b.WriteString("\n")
	for n, v := range m.snap.Engine {
		b.WriteString(fmt.Sprintf("ENG%d     %02X  %03X  %02X %02X %02X %02X\n",
			n, uint8(v.Flags), v.Pitch, v.Vol, v.VolL, v.VolR, v.Delta))
	}
	b.WriteString(headerStyle.Render("TRAFFIC  FL VIDX PAN  L  R PITCH"))
	b.WriteString("\n")
	for i, v := range m.snap.Traffic {
		b.WriteString(fmt.Sprintf("TRF%d     %02X  %02X  %02X %02X %02X  %02X\n",
			i, uint8(v.Flags), v.VolIdx, v.PanIdx, v.VolL, v.VolR, v.Pitch))
	}
	b.WriteString(fmt.Sprintf("player pitch %04X vol %02X  rev %s", m.pitch, m.volume, onOff(m.rev)))
	return b.String()
}

func (m Model) renderSlots() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("PCM"))
	b.WriteString(" ")
	for slot := 0; slot < sound.NumPCMSlots; slot++ {
		label := fmt.Sprintf("%X", slot)
		if m.snap.PCM.Active(slot) {
			b.WriteString(activeStyle.Render(label))
		} else {
			b.WriteString(idleStyle.Render(label))
		}
	}
	return b.String()
}

func (m Model) statusLine() string {
	parts := []string{
		fmt.Sprintf("audio %5d B", m.snap.AudioLevel),
		fmt.Sprintf("overruns %d", m.snap.AudioOverruns),
		fmt.Sprintf("FM drops %d", m.snap.DroppedFM),
	}
	if m.snap.PendingCommand != sound.CmdNone {
		parts = append(parts, fmt.Sprintf("pending %02X", m.snap.PendingCommand))
	}
	if m.StatusMsg != "" {
		parts = append(parts, m.StatusMsg)
	}
	return strings.Join(parts, "  |  ")
}

func (m Model) renderHelp() string {
	help := `
Keys
  up/down, j/k   select command
  enter          send selected command
  1-4            music tracks
  0              reset
  + / -          player engine pitch
  ] / [          player engine volume
  r              rev effect on/off
  t              passing car on/off
  space          pause/resume
  ?              close help
  q              quit
`
	return panelStyle.Render(strings.TrimPrefix(help, "\n"))
}
