package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func press(t *testing.T, m BrowseModel, msg tea.KeyMsg) BrowseModel {
	t.Helper()
	next, _ := m.Update(msg)
	bm, ok := next.(BrowseModel)
	if !ok {
		t.Fatalf("Update returned %T, want BrowseModel", next)
	}
	return bm
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBrowseModelNavigation(t *testing.T) {
	m := NewBrowseModel(testGraph(t), "platform")
	if m.Err != nil {
		t.Fatalf("NewBrowseModel: %v", m.Err)
	}
	if len(m.Refs) != 2 {
		t.Fatalf("platform has %d refs, want 2", len(m.Refs))
	}

	m = press(t, m, runes("j"))
	if m.Cursor != 1 {
		t.Errorf("after j: cursor = %d, want 1", m.Cursor)
	}
	m = press(t, m, runes("j"))
	if m.Cursor != 1 {
		t.Errorf("j past the end: cursor = %d, want 1", m.Cursor)
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Cursor != 0 {
		t.Errorf("after up: cursor = %d, want 0", m.Cursor)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Current != "alice" {
		t.Errorf("after enter: current = %q, want alice", m.Current)
	}
	if len(m.History) != 1 || m.History[0] != "platform" {
		t.Errorf("history = %v, want [platform]", m.History)
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Current != "platform" || len(m.History) != 0 {
		t.Errorf("after backspace: current = %q, history = %v", m.Current, m.History)
	}

	// Going back with an empty history stays put.
	m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Current != "platform" {
		t.Errorf("back at the root: current = %q, want platform", m.Current)
	}
}

func TestBrowseModelDirections(t *testing.T) {
	m := NewBrowseModel(testGraph(t), "platform")

	tests := []struct {
		direction string
		refs      int
	}{
		{direction: "out", refs: 0},
		{direction: "in", refs: 2},
		{direction: "both", refs: 2},
	}
	for _, tt := range tests {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.Direction != tt.direction {
			t.Fatalf("direction = %q, want %q", m.Direction, tt.direction)
		}
		if len(m.Refs) != tt.refs {
			t.Errorf("%s: %d refs, want %d", tt.direction, len(m.Refs), tt.refs)
		}
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Current != "platform" {
		t.Errorf("enter without edges moved to %q", m.Current)
	}
}

func TestBrowseModelView(t *testing.T) {
	m := NewBrowseModel(testGraph(t), "alice")
	view := m.View()
	for _, want := range []string{"alice", "Person", "leads", "member_of", "platform", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view is missing %q:\n%s", want, view)
		}
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // out
	m = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // in
	if view := m.View(); !strings.Contains(view, "no in edges") {
		t.Errorf("view = %q, want no in edges", view)
	}
}

func TestBrowseModelQuit(t *testing.T) {
	m := NewBrowseModel(testGraph(t), "alice")
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Errorf("%s: expected quit command", key)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: command did not quit", key)
		}
	}
}

func TestBrowseModelWindowSize(t *testing.T) {
	m := NewBrowseModel(testGraph(t), "alice")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if h := next.(BrowseModel).Height; h != 5 {
		t.Errorf("height = %d, want minimum of 5", h)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if h := next.(BrowseModel).Height; h != 28 {
		t.Errorf("height = %d, want 28", h)
	}
}
