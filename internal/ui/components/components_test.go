package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/lectura/internal/ui/theme"
)

func TestBarColor(t *testing.T) {
	tests := []struct {
		percent float64
		success bool
	}{
		{0, false},
		{49.9, false},
		{50, true},
		{100, true},
	}
	for _, tt := range tests {
		got := BarColor(tt.percent)
		want := theme.Error
		if tt.success {
			want = theme.Success
		}
		if got != want {
			t.Errorf("BarColor(%v) = %v, want %v", tt.percent, got, want)
		}
	}
}

func TestBarChart(t *testing.T) {
	out := BarChart([]ChartRow{
		{Label: "Littérale", Percent: 75, Detail: "(3/4)"},
		{Label: "Évaluative", Percent: 0, Detail: "(0/2)"},
	}, 60)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	for _, want := range []string{"Littérale", "75%", "(3/4)", "Évaluative", "0%", "(0/2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("chart missing %q", want)
		}
	}
}

func TestMenuSkipsDisabled(t *testing.T) {
	pressed := ""
	m := NewMenu([]MenuItem{
		{Label: "Exporter", Disabled: true},
		{Label: "Quitter", Action: func() tea.Cmd { pressed = "quit"; return nil }},
	})
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item", m.Selected)
	}

	m, _ = m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if m.Selected != 1 {
		t.Errorf("moved onto a disabled item")
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if pressed != "quit" {
		t.Error("action not called")
	}
}

func TestTextInputLock(t *testing.T) {
	ti := NewTextInput("Réponse", "", 10, 20)
	ti.Model.SetValue("abc")
	ti.Lock(true)

	ti, _ = ti.Update(tea.KeyPressMsg{Code: 'd', Text: "d"})
	if ti.Value() != "abc" {
		t.Errorf("locked input changed to %q", ti.Value())
	}
	if !ti.Locked() {
		t.Error("expected locked")
	}

	ti.Lock(false)
	ti.Reset()
	if !ti.Blank() {
		t.Error("expected blank after reset")
	}
}
