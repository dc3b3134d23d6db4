package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-rhythm/debug"
	"go-rhythm/midi"
	"go-rhythm/rhythm"
	"go-rhythm/theme"
	"go-rhythm/widgets"
)

const indent = 2

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	th := m.Theme
	headerStyle := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	labelStyle := lipgloss.NewStyle().Foreground(th.FG())
	focusStyle := lipgloss.NewStyle().Foreground(th.Cursor()).Bold(true)
	pad := strings.Repeat(" ", indent)

	var lines []string
	add := func(block string) int {
		top := len(lines)
		lines = append(lines, strings.Split(block, "\n")...)
		return top
	}

	add("")
	add(headerStyle.Render("go-rhythm  "+m.page.Title()) + "  " + dimStyle.Render(m.pageTabs()+m.deviceStatus()))
	add("")

	for i, name := range m.page.Fields() {
		marker := "  "
		style := labelStyle
		if m.focus == i {
			marker = string(th.Symbols.Focus) + " "
			style = focusStyle
		}
		add(style.Render(fmt.Sprintf("%s%-9s", marker, capitalize(name)+":")) + " " + m.fields[i].View())
	}
	if len(m.fields) > 0 {
		add("")
	}

	gate := m.engine.Gate()
	m.bounds.keyRows = m.bounds.keyRows[:0]
	for i, s := range m.engine.Slots() {
		focused := m.focus == len(m.fields)+i
		marker := "  "
		style := labelStyle
		if focused {
			marker = string(th.Symbols.Focus) + " "
			style = focusStyle
		}
		add(style.Render(marker+capitalize(s.Label())) + "  " + m.controls(s, gate.Play[i]))

		kb := widgets.RenderKeyboard(th, m.pulses.Lit(s.ID()), !focused && !s.Recording())
		top := add(indentBlock(kb, pad))
		m.bounds.keyRows = append(m.bounds.keyRows, keyRow{slot: i, top: top, left: indent})

		add(pad + labelStyle.Render(s.Display()))
		add(pad + lipgloss.NewStyle().Foreground(statusColor(th, s.Status())).Render(s.StatusText()))
		add("")
	}

	submitStyle := dimStyle
	if gate.Submit && !m.submitting {
		submitStyle = lipgloss.NewStyle().Foreground(th.Success()).Bold(true)
	}
	add(pad + submitStyle.Render("[ "+m.page.Title()+" ]"))

	if m.message != "" {
		add(pad + lipgloss.NewStyle().Foreground(messageColor(th, m.messageKin)).Render(m.message))
	}
	if warn := debug.Recent(); len(warn) > 0 {
		add(pad + dimStyle.Render("! "+warn[len(warn)-1].Message))
	}
	if m.page == PageChange && m.deps.Submitter != nil && !m.deps.Submitter.LoggedIn() {
		add(pad + dimStyle.Render("Not logged in: the server will ask you to log in first."))
	}

	if pads := m.padMirror(); pads != "" {
		add("")
		add(indentBlock(pads, pad))
	}

	add("")
	add(pad + m.help.View(keys))
	return strings.Join(lines, "\n")
}

// controls shows record and play state for a slot
func (m Model) controls(s *rhythm.Slot, canPlay bool) string {
	th := m.Theme
	rec := lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Record) + " rec")
	if s.Recording() {
		rec = lipgloss.NewStyle().Foreground(th.Recording()).Bold(true).
			Render(string(th.Symbols.Stop) + " stop")
	}
	play := lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Empty) + " play")
	if canPlay {
		play = lipgloss.NewStyle().Foreground(th.Success()).Render(string(th.Symbols.Play) + " play")
	}
	return rec + "  " + play
}

// padMirror shows the Launchpad layout while one is connected
func (m Model) padMirror() string {
	surf := m.deps.Surface
	if surf == nil || !m.hasLaunchpad() {
		return ""
	}
	out := widgets.RenderPadRow(surf.Mirror(8)) + "\n"
	for i := range m.engine.Slots() {
		out += widgets.RenderPadRow(surf.Mirror(i)) + "\n"
	}
	for _, item := range surf.Legend() {
		out += widgets.RenderLegendItem(item.Color, item.Name, item.Desc) + "\n"
	}
	return strings.TrimSuffix(out, "\n")
}

func (m Model) hasLaunchpad() bool {
	for _, t := range m.devices {
		if t == midi.ControllerLaunchpad {
			return true
		}
	}
	return false
}

func (m Model) pageTabs() string {
	var parts []string
	for i, p := range Pages {
		label := fmt.Sprintf("F%d %s", i+1, p)
		if p == m.page {
			label = "[" + label + "]"
		}
		parts = append(parts, label)
	}
	if m.deps.Submitter != nil && m.deps.Submitter.LoggedIn() {
		parts = append(parts, "F4 logout")
	}
	return strings.Join(parts, " ")
}

func (m Model) deviceStatus() string {
	if len(m.devices) == 0 {
		return ""
	}
	ids := make([]string, 0, len(m.devices))
	for id := range m.devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var tags []string
	for _, id := range ids {
		switch m.devices[id] {
		case midi.ControllerLaunchpad:
			tags = append(tags, "LP")
		case midi.ControllerKeyboard:
			tags = append(tags, "KB")
		}
	}
	return "  " + strings.Join(tags, " ")
}

func statusColor(th *theme.Theme, st rhythm.Status) lipgloss.Color {
	switch st {
	case rhythm.StatusRecording:
		return th.Recording()
	case rhythm.StatusComplete:
		return th.Complete()
	case rhythm.StatusTooShort:
		return th.Error()
	}
	return th.FG()
}

func messageColor(th *theme.Theme, k messageKind) lipgloss.Color {
	switch k {
	case msgSuccess:
		return th.Complete()
	case msgError:
		return th.Error()
	}
	return th.FG()
}

func indentBlock(block, pad string) string {
	ls := strings.Split(block, "\n")
	for i := range ls {
		ls[i] = pad + ls[i]
	}
	return strings.Join(ls, "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
