package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/founders/internal/models"
	"github.com/desertthunder/founders/internal/repositories"
	"github.com/desertthunder/founders/internal/tasks"
	th "github.com/desertthunder/founders/internal/testing"
)

var sheet = th.CSV("name,email,startup name,linkedin url",
	"Ana,ana@x.com,Acme,http://li/ana",
	"Bo,bo@x.com,Acme,http://li/bo",
	"Cy,,Acme,http://li/cy",
)

func newEngine(t *testing.T) (*tasks.ImportEngine, *repositories.Directory) {
	t.Helper()
	dir := repositories.NewDirectory(th.NewTestDB(t))
	return tasks.NewImportEngine(repositories.NewImportAdapter(dir), nil), dir
}

// drive feeds cmd's messages back into m until no command is left or until view is reached.
func drive(t *testing.T, m *Model, cmd tea.Cmd, view ViewState) {
	t.Helper()
	for i := 0; cmd != nil && i < 100; i++ {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = m.Update(msg)
		if m.view == view {
			return
		}
	}
}

func keyPress(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModel(t *testing.T) {
	t.Run("Review then import", func(t *testing.T) {
		engine, dir := newEngine(t)
		m := NewModel(context.Background(), engine, "founders.csv", sheet, tasks.ImportOpts{})
		m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

		drive(t, m, m.Init(), ReviewView)
		if m.view != ReviewView {
			t.Fatalf("expected review view, got %d", m.view)
		}
		if got := len(m.review.Items()); got != 3 {
			t.Errorf("expected 3 reviewed rows, got %d", got)
		}
		if founders, _ := dir.Founders.List(nil); len(founders) != 0 {
			t.Fatalf("review must not write, got %d founders", len(founders))
		}

		m.Update(keyPress("enter"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "New founders: 2") {
			t.Errorf("expected dry run counts in confirm view, got:\n%s", m.View())
		}

		m.Update(keyPress("n"))
		if m.view != ReviewView {
			t.Fatalf("expected n to return to review, got %d", m.view)
		}
		m.Update(keyPress("enter"))

		_, cmd := m.Update(keyPress("y"))
		if m.view != ImportView {
			t.Fatalf("expected import view, got %d", m.view)
		}
		drive(t, m, cmd, ResultView)

		result, imported, err := m.Result()
		if err != nil || !imported {
			t.Fatalf("expected finished import, got imported=%v err=%v", imported, err)
		}
		if result.Created != 2 || result.Skipped != 1 || result.DryRun {
			t.Errorf("unexpected result %+v", result)
		}
		if founders, _ := dir.Founders.List(nil); len(founders) != 2 {
			t.Errorf("expected 2 founders written, got %d", len(founders))
		}
		if !strings.Contains(m.View(), "Import complete") {
			t.Errorf("expected summary in result view, got:\n%s", m.View())
		}

		_, cmd = m.Update(keyPress("r"))
		drive(t, m, cmd, ReviewView)
		if m.preview.Updated != 2 {
			t.Errorf("expected second review to see updates, got %+v", m.preview)
		}
	})

	t.Run("Dry run stops after review", func(t *testing.T) {
		engine, _ := newEngine(t)
		m := NewModel(context.Background(), engine, "founders.csv", sheet, tasks.ImportOpts{DryRun: true})

		drive(t, m, m.Init(), ResultView)
		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		result, imported, err := m.Result()
		if err != nil || imported || !result.DryRun {
			t.Errorf("expected dry run result, got %+v imported=%v err=%v", result, imported, err)
		}
	})

	t.Run("Decode failure", func(t *testing.T) {
		engine, _ := newEngine(t)
		m := NewModel(context.Background(), engine, "logo.gif", []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"), tasks.ImportOpts{})

		drive(t, m, m.Init(), ResultView)
		if _, _, err := m.Result(); !tasks.IsBatchError(err) {
			t.Errorf("expected batch error, got %v", err)
		}
		if !strings.Contains(m.View(), "Import failed") {
			t.Errorf("expected failure view, got:\n%s", m.View())
		}
	})

	t.Run("Quit", func(t *testing.T) {
		engine, _ := newEngine(t)
		m := NewModel(context.Background(), engine, "founders.csv", sheet, tasks.ImportOpts{})
		drive(t, m, m.Init(), ReviewView)

		_, cmd := m.Update(keyPress("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
		if _, imported, _ := m.Result(); imported {
			t.Error("nothing should be imported after quitting")
		}
	})
}

func TestRenderSummary(t *testing.T) {
	result := models.NewImportResult(false)
	result.Record(models.RowOutcome{Row: 2, Status: models.StatusOK, Action: models.ActionCreated, Email: "ana@x.com"}, true)
	result.Record(models.RowOutcome{Row: 3, Status: models.StatusSkipped, Reason: "missing email"}, false)
	result.Record(models.RowOutcome{Row: 4, Status: models.StatusError, Email: "bo@x", Reason: "invalid email"}, false)
	result.Record(models.RowOutcome{Row: 5, Status: models.StatusSkipped, Reason: "missing linkedin url"}, false)

	out := RenderSummary(result, "f.csv", 2)
	for _, want := range []string{"Import complete: f.csv", "missing email", "bo@x: invalid email", "and 1 more"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "ana@x.com") {
		t.Error("summary should only list rows that were not imported")
	}

	dry := models.NewImportResult(true)
	dry.Record(models.RowOutcome{Row: 2, Status: models.StatusOK, Action: models.ActionWouldUpsert}, true)
	out = RenderSummary(dry, "", 0)
	if !strings.Contains(out, "Dry run complete") || !strings.Contains(out, "would create") {
		t.Errorf("unexpected dry run summary:\n%s", out)
	}
	if !strings.Contains(out, "Every row was imported") {
		t.Errorf("expected all-clear line:\n%s", out)
	}

	if got := Problems(result); len(got) != 3 || got[0].Row != 3 {
		t.Errorf("unexpected problems %+v", got)
	}
}

func TestKeyMap(t *testing.T) {
	keys := newKeyMap()

	tests := []struct {
		view   ViewState
		dryRun bool
		want   []string
	}{
		{LoadingView, false, []string{"q"}},
		{ReviewView, false, []string{"enter", "q"}},
		{ConfirmView, false, []string{"y", "n/esc", "q"}},
		{ImportView, false, []string{"ctrl+c"}},
		{ResultView, false, []string{"r", "q"}},
		{ResultView, true, []string{"q"}},
	}

	for _, tt := range tests {
		got := keys.forView(tt.view, tt.dryRun)
		if len(got) != len(tt.want) {
			t.Errorf("view %d: expected %d bindings, got %d", tt.view, len(tt.want), len(got))
			continue
		}
		for i, b := range got {
			if b.Help().Key != tt.want[i] {
				t.Errorf("view %d: expected binding %q, got %q", tt.view, tt.want[i], b.Help().Key)
			}
		}
	}
}
