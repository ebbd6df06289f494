package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/sortgroup/pkg/sorting"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// GroupListModel - Interactive group selection
// =============================================================================

// GroupRow is one selectable group with its depth below the scene roots.
type GroupRow struct {
	Group *sorting.Group
	Depth int
}

// GroupListModel is the bubbletea model for picking a group to render.
type GroupListModel struct {
	Rows     []GroupRow
	Cursor   int
	Selected *sorting.Group
	Height   int
	Offset   int
}

// groupRows lists every group of w, depth first from the roots in member
// order.
func groupRows(w *sorting.World) []GroupRow {
	var rows []GroupRow
	seen := map[*sorting.Group]bool{}
	var visit func(g *sorting.Group, depth int)
	visit = func(g *sorting.Group, depth int) {
		if seen[g] {
			return
		}
		seen[g] = true
		rows = append(rows, GroupRow{Group: g, Depth: depth})
		for _, m := range g.Members {
			if m.Group != nil {
				visit(m.Group, depth+1)
			}
		}
	}
	for _, g := range w.Roots() {
		visit(g, 0)
	}
	return rows
}

// NewGroupListModel creates a picker over every group of w.
func NewGroupListModel(w *sorting.World) GroupListModel {
	return GroupListModel{Rows: groupRows(w), Height: 15}
}

func (m GroupListModel) Init() tea.Cmd {
	return nil
}

func (m GroupListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Rows)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Rows) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Rows[m.Cursor].Group
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m GroupListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Sorting Group"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	if len(m.Rows) == 0 {
		b.WriteString(StyleWarning.Render("Scene has no sorting groups"))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Rows[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := strings.Repeat("  ", r.Depth) + r.Group.Name
		orders := "—"
		if !r.Group.Range.Empty() {
			orders = fmt.Sprintf("%d..%d", r.Group.Range.Lo, r.Group.Range.Hi)
		}
		rows = append(rows, []string{cursor, name, r.Group.Mode.String(), string(r.Group.Layer), strconv.Itoa(len(r.Group.Members)), orders})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Group", "Mode", "Layer", "Members", "Orders").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			idx := m.Offset + row
			if idx >= len(m.Rows) {
				return lipgloss.NewStyle()
			}
			g := m.Rows[idx].Group
			base := lipgloss.NewStyle()
			if col >= 2 {
				base = base.Foreground(colorGray)
			}
			switch {
			case idx == m.Cursor && g.Enabled:
				return base.Foreground(colorGreen).Bold(true)
			case idx == m.Cursor:
				return base.Foreground(colorDim).Bold(true)
			case !g.Enabled:
				return base.Foreground(colorDim)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  disabled groups are dimmed", m.Cursor+1, len(m.Rows))))

	return b.String()
}
