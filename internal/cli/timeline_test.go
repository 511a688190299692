package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/activitylens/activitylens/pkg/derive"
)

func scrubber(t *testing.T, span time.Duration) ScrubberModel {
	t.Helper()
	sc, err := loadScene(context.Background(), writeScene(t))
	if err != nil {
		t.Fatal(err)
	}
	res, err := derive.Derive(sc.graph, sc.features)
	if err != nil {
		t.Fatal(err)
	}
	return NewScrubberModel(sc.graph, res, span)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func minute(m int) time.Time {
	return time.Date(2024, 5, 2, 9, m, 0, 0, time.UTC)
}

func TestScrubberKeys(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		cursor time.Time
		span   time.Duration
	}{
		{"Start", nil, minute(0), time.Minute},
		{"Right", []string{"right"}, minute(1), time.Minute},
		{"RightVim", []string{"l", "l"}, minute(2), time.Minute},
		{"RightStopsAtLast", []string{"right", "right", "right", "right", "right"}, minute(3), time.Minute},
		{"LeftStopsAtFirst", []string{"left", "h"}, minute(0), time.Minute},
		{"Back", []string{"right", "right", "left"}, minute(1), time.Minute},
		{"End", []string{"end"}, minute(3), time.Minute},
		{"EndThenHome", []string{"G", "g"}, minute(0), time.Minute},
		{"Widen", []string{"+", "="}, minute(0), 4 * time.Minute},
		{"Narrow", []string{"-"}, minute(0), 30 * time.Second},
		{"NarrowClamps", []string{"-", "-", "-", "-", "-", "-", "-", "-"}, minute(0), minSpan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := scrubber(t, time.Minute)
			for _, k := range tt.keys {
				next, cmd := m.Update(keyMsg(k))
				if cmd != nil {
					t.Fatalf("key %q returned a command", k)
				}
				m = next.(ScrubberModel)
			}
			if !m.Cursor.Equal(tt.cursor) {
				t.Errorf("Cursor = %v, want %v", m.Cursor, tt.cursor)
			}
			if m.Span != tt.span {
				t.Errorf("Span = %v, want %v", m.Span, tt.span)
			}
		})
	}
}

func TestScrubberQuit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		m := scrubber(t, time.Minute)
		_, cmd := m.Update(keyMsg(k))
		if cmd == nil {
			t.Fatalf("%q returned no command", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q did not quit", k)
		}
	}
}

func TestScrubberWindowAndResize(t *testing.T) {
	m := scrubber(t, 90*time.Second)
	next, _ := m.Update(keyMsg("end"))
	m = next.(ScrubberModel)

	var ids []string
	for _, it := range m.Window() {
		ids = append(ids, it.ID)
	}
	if got := strings.Join(ids, ","); got != "c,d" {
		t.Errorf("Window() = %s, want c,d", got)
	}

	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if h := next.(ScrubberModel).Height; h != 5 {
		t.Errorf("Height = %d, want 5", h)
	}
	next, _ = m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if h := next.(ScrubberModel).Height; h != 32 {
		t.Errorf("Height = %d, want 32", h)
	}
	if !strings.Contains(m.View(), "[4/4]") {
		t.Errorf("View() footer should count every node at the last instant:\n%s", m.View())
	}
}
