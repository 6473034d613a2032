package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/typegraph/pkg/graph"
	"github.com/matzehuels/typegraph/pkg/record"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	listKeyStyle = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// browseDirections cycles with tab.
var browseDirections = []string{"both", "out", "in"}

// =============================================================================
// BrowseModel - Interactive graph walk
// =============================================================================

// BrowseModel is the bubbletea model for walking a graph one node at a time.
// It lists the edges of the current node; selecting one moves to the node on
// its far side.
type BrowseModel struct {
	Graph     *record.Graph
	Current   string
	History   []string
	Direction string
	Refs      []record.Ref
	Cursor    int
	Height    int
	Offset    int
	Err       error
}

// NewBrowseModel creates a browse model positioned at start.
func NewBrowseModel(g *record.Graph, start string) BrowseModel {
	m := BrowseModel{
		Graph:     g,
		Direction: browseDirections[0],
		Height:    15,
	}
	return m.visit(start)
}

// visit moves to id and reloads its edge list.
func (m BrowseModel) visit(id string) BrowseModel {
	m.Current = id
	m.Cursor, m.Offset = 0, 0
	return m.reload()
}

func (m BrowseModel) reload() BrowseModel {
	m.Refs = nil
	refs, err := edgesOf(m.Graph, m.Current, m.Direction)
	m.Err = err
	if err != nil {
		return m
	}
	for r := range refs {
		m.Refs = append(m.Refs, r)
	}
	if m.Cursor >= len(m.Refs) {
		m.Cursor = max(len(m.Refs)-1, 0)
	}
	return m
}

func (m BrowseModel) Init() tea.Cmd {
	return nil
}

func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Refs)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter", "right", "l":
			if len(m.Refs) == 0 {
				return m, nil
			}
			next := m.Refs[m.Cursor].Outer()
			m.History = append(m.History, m.Current)
			return m.visit(next), nil
		case "backspace", "left", "h":
			if n := len(m.History); n > 0 {
				prev := m.History[n-1]
				m.History = m.History[:n-1]
				return m.visit(prev), nil
			}
		case "tab":
			i := slices.Index(browseDirections, m.Direction)
			m.Direction = browseDirections[(i+1)%len(browseDirections)]
			m.Cursor, m.Offset = 0, 0
			return m.reload(), nil
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 12
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m BrowseModel) View() string {
	var b strings.Builder

	node, ok := m.Graph.LookupNode(m.Current)
	if !ok {
		b.WriteString(StyleWarning.Render(fmt.Sprintf("node %s not found", m.Current)))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(StyleTitle.Render(node.ID))
	b.WriteString(" ")
	b.WriteString(listDimStyle.Render(node.Type))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ follow  ⌫ back  tab direction  q quit"))
	b.WriteString("\n\n")

	for _, k := range sortedKeys(node.Props) {
		b.WriteString(listKeyStyle.Render(k))
		b.WriteString(" ")
		b.WriteString(StyleValue.Render(fmt.Sprint(node.Props[k])))
		b.WriteString("\n")
	}
	if len(node.Props) > 0 {
		b.WriteString("\n")
	}

	if len(m.Refs) == 0 {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  no %s edges", m.Direction)))
		b.WriteString("\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Refs))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Refs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		arrow := "→"
		if r.Direction == graph.Backward {
			arrow = "←"
		}
		outerType, _ := m.Graph.NodeType(r.Outer())
		rows = append(rows, []string{cursor, r.Weight.Type, arrow, r.Outer(), outerType, r.ID})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Edge type", "", "Neighbor", "Type", "Edge").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
			}
			if col == 4 || col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	trail := append(slices.Clone(m.History), m.Current)
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d] %s  %s", m.Cursor+1, len(m.Refs), m.Direction, strings.Join(trail, " › "))))

	return b.String()
}
