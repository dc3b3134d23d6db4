package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-rhythm/keymap"
	"go-rhythm/theme"
)

// CellWidth is the horizontal space one key takes, gap included
const CellWidth = 6

// KeyboardHeight is the number of lines RenderKeyboard produces
const KeyboardHeight = 2

// RenderKeyboard draws the eight keys as cells: key letter over note name.
// Lit keys are drawn in the accent color; dim draws the row muted.
func RenderKeyboard(th *theme.Theme, lit map[keymap.Key]bool, dim bool) string {
	var cells []string
	for _, b := range keymap.Bindings() {
		style := lipgloss.NewStyle().
			Width(CellWidth - 1).
			Align(lipgloss.Center).
			Foreground(th.FG()).
			Background(th.Muted())
		switch {
		case lit[b.Key]:
			style = style.Background(th.Accent()).Foreground(th.BG()).Bold(true)
		case dim:
			style = style.Foreground(th.Muted()).Background(th.BG())
		case b.Key.IsSharp():
			style = style.Background(th.Surface())
		}
		cells = append(cells, style.Render(string(b.Key)+"\n"+string(b.Note)))
		cells = append(cells, strings.Repeat(" \n", KeyboardHeight-1)+" ")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells[:len(cells)-1]...)
}

// KeyAt returns the key under column x of a rendered keyboard, or false on
// a gap or past the last key
func KeyAt(x int) (keymap.Key, bool) {
	if x < 0 || x%CellWidth == CellWidth-1 {
		return "", false
	}
	keys := keymap.Keys()
	i := x / CellWidth
	if i >= len(keys) {
		return "", false
	}
	return keys[i], true
}
