package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FooterModel shows the run status and key hints.
type FooterModel struct {
	keys   KeyMap
	paused bool
	done   bool
	err    bool
	width  int
}

// NewFooterModel creates a footer for keys.
func NewFooterModel(keys KeyMap) FooterModel {
	return FooterModel{keys: keys}
}

func (f *FooterModel) SetPaused(paused bool) { f.paused = paused }
func (f *FooterModel) SetDone(done bool)     { f.done = done }
func (f *FooterModel) SetError(err bool)     { f.err = err }
func (f *FooterModel) SetWidth(w int)        { f.width = w }

// View renders the footer.
func (f FooterModel) View() string {
	var status string
	switch {
	case f.err:
		status = statusErrorStyle.Render(" ERROR ")
	case f.done:
		status = statusDoneStyle.Render(" DONE ")
	case f.paused:
		status = statusPausedStyle.Render(" PAUSED ")
	default:
		status = statusRunningStyle.Render(" RUNNING ")
	}

	hints := make([]string, 0, 4)
	for _, b := range f.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, footerKeyStyle.Render(h.Key)+" "+footerDescStyle.Render(h.Desc))
	}
	row := status + "  " + strings.Join(hints, "  ")
	return lipgloss.NewStyle().Width(max(f.width, 0)).Render(row)
}
