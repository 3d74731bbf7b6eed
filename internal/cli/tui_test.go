package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var browseRows = []PackageRow{
	{Name: "bash", Version: "4.4.12-3", Category: "Base Shells"},
	{Name: "bash-completion", Version: "2.7-1", Category: "Shells"},
	{Name: "coreutils", Version: "8.26-2", Category: "Base Utils"},
	{Name: "libiconv2", Version: "1.14-3", Category: "Libs"},
}

func names(rows []PackageRow) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func press(m tea.Model, keys ...tea.KeyMsg) tea.Model {
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m
}

func TestPackageListFilter(t *testing.T) {
	m := NewPackageListModel(browseRows, "")
	if len(m.Rows) != len(browseRows) {
		t.Fatalf("rows = %v", names(m.Rows))
	}

	got := press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("bash")}).(PackageListModel)
	if got.Filter != "bash" || len(got.Rows) != 2 || got.Rows[0].Name != "bash" {
		t.Errorf("filtered rows = %v", names(got.Rows))
	}

	got = press(got, tea.KeyMsg{Type: tea.KeyBackspace}).(PackageListModel)
	if got.Filter != "bas" {
		t.Errorf("Filter = %q after backspace", got.Filter)
	}

	pre := NewPackageListModel(browseRows, "iconv")
	if len(pre.Rows) != 1 || pre.Rows[0].Name != "libiconv2" {
		t.Errorf("pre-filtered rows = %v", names(pre.Rows))
	}
}

func TestPackageListNavigation(t *testing.T) {
	m := NewPackageListModel(browseRows, "")
	m.Height = 2

	down := tea.KeyMsg{Type: tea.KeyDown}
	got := press(m, down, down, down, down).(PackageListModel)
	if got.Cursor != 3 || got.Offset != 2 {
		t.Errorf("cursor = %d, offset = %d; want 3, 2", got.Cursor, got.Offset)
	}

	got = press(got, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp}).(PackageListModel)
	if got.Cursor != 1 || got.Offset != 1 {
		t.Errorf("cursor = %d, offset = %d; want 1, 1", got.Cursor, got.Offset)
	}

	final, cmd := got.Update(tea.KeyMsg{Type: tea.KeyEnter})
	sel := final.(PackageListModel).Selected
	if sel == nil || sel.Name != "bash-completion" {
		t.Errorf("Selected = %+v", sel)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}
}

func TestPackageListEmpty(t *testing.T) {
	m := NewPackageListModel(browseRows, "zzz")
	got, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got.(PackageListModel).Selected != nil || cmd != nil {
		t.Error("enter on an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "no matching packages") {
		t.Errorf("View:\n%s", m.View())
	}
}

func TestPackageListView(t *testing.T) {
	view := NewPackageListModel(browseRows, "").View()
	for _, want := range []string{"Browse Packages", "coreutils", "Base Utils", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View missing %q", want)
		}
	}
}
