package screen

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

const (
	glyphOn       = "[x]"
	glyphOff      = "[ ]"
	glyphDisabled = "[-]"
)

// switch, permission, category, id
const columns = 4

type lineKind int

const (
	lineTitle lineKind = iota
	lineColumns
	lineSwitch
	lineGap
)

type line struct {
	cells []string
	kind  lineKind
}

type palette map[lineKind]lipgloss.Style

func newPalette() palette {
	cell := lipgloss.NewStyle().PaddingRight(2)
	return palette{
		lineTitle:   cell.Bold(true).Foreground(lipgloss.Color("4")),
		lineColumns: cell.Foreground(lipgloss.Color("245")),
		lineSwitch:  cell,
		lineGap:     cell,
	}
}

func glyph(sw *Switch) string {
	switch {
	case !sw.Enabled():
		return glyphDisabled
	case sw.Checked():
		return glyphOn
	default:
		return glyphOff
	}
}

// lines lays the screen out top to bottom: the app with its allow-all
// switch, then one block per non-empty group.
func (s *Screen) lines() []line {
	out := []line{
		{kind: lineTitle, cells: []string{strings.ToUpper(s.app.Title())}},
		{kind: lineSwitch, cells: []string{glyph(s.allowAll), "Allow all"}},
	}
	for _, g := range s.visibleGroups() {
		out = append(out,
			line{kind: lineGap},
			line{kind: lineTitle, cells: []string{s.groupTitle(g)}},
			line{kind: lineColumns, cells: []string{"", "PERMISSION", "CATEGORY", "ID"}},
		)
		for _, p := range s.groups[g] {
			out = append(out, line{kind: lineSwitch, cells: []string{
				glyph(p.Switch),
				p.Item.Display.Label,
				p.Item.Display.Category,
				p.Item.ID.Short(),
			}})
		}
	}
	return out
}

func (s *Screen) footers() []string {
	var out []string
	if !s.allowAll.Enabled() {
		out = append(out, fmt.Sprintf("%s has not requested any health permissions", s.app.Title()))
	}
	if s.app.RationaleURL != "" {
		out = append(out, fmt.Sprintf("Read %s's privacy policy: %s", s.app.Title(), s.app.RationaleURL))
	}
	return out
}

// Render writes the whole screen to w.
func (s *Screen) Render(w io.Writer) {
	lines := s.lines()

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row < 0 || row >= len(lines) {
				return s.palette[lineSwitch]
			}
			return s.palette[lines[row].kind]
		})
	for _, l := range lines {
		cells := make([]string, columns)
		copy(cells, l.cells)
		t.Row(cells...)
	}
	fmt.Fprintln(w, t)

	for _, f := range s.footers() {
		fmt.Fprintf(w, "\n%s\n", f)
	}
	fmt.Fprintln(w)
}

// Frame renders the screen to a string.
func (s *Screen) Frame() string {
	var b strings.Builder
	s.Render(&b)
	return b.String()
}
