package ui

import (
	"strings"
	"testing"

	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/render/headless"
	"chosenoffset.com/deepruins/internal/tween"
)

func TestMenuCursorClamped(t *testing.T) {
	m := NewMenu("Title", 0, 0, 200)
	m.SetItems([]Item{{Label: "New Game", Enabled: true}, {Label: "Continue"}, {Label: "Quit", Enabled: true}})

	m.Move(-1)
	if m.Cursor != 0 {
		t.Errorf("Expected cursor clamped at 0, got %d", m.Cursor)
	}
	m.Move(5)
	if m.Cursor != 2 {
		t.Errorf("Expected cursor clamped at 2, got %d", m.Cursor)
	}

	m.SetItems([]Item{{Label: "Only", Enabled: true}})
	if m.Cursor != 0 {
		t.Errorf("Expected cursor pulled back into range, got %d", m.Cursor)
	}
}

func TestMenuConfirmSkipsDisabled(t *testing.T) {
	input := headless.NewInput()
	m := NewMenu("", 0, 0, 200)
	m.SetItems([]Item{{Label: "New Game", Enabled: true}, {Label: "Continue"}})

	input.Press(render.KeyDown)
	if m.Update(input) {
		t.Error("Expected navigation not to confirm")
	}
	input.Tick()

	input.Press(render.KeyEnter)
	if m.Update(input) {
		t.Error("Expected disabled entry not to confirm")
	}
	input.Tick()

	input.Press(render.KeyUp)
	m.Update(input)
	input.Tick()
	input.Press(render.KeySpace)
	if !m.Update(input) {
		t.Error("Expected enabled entry to confirm")
	}
	if item, _ := m.Selected(); item.Label != "New Game" {
		t.Errorf("Expected New Game, got %s", item.Label)
	}
}

func TestMenuDrawMarksCursor(t *testing.T) {
	r := headless.NewRenderer()
	m := NewMenu("Battle", 0, 0, 200)
	m.SetItems([]Item{{Label: "Attack", Enabled: true}, {Label: "Magic", Enabled: true}})
	m.Draw(r.NewImage(800, 600), r)

	if !r.Drew("> Attack") || !r.Drew("  Magic") {
		t.Errorf("Unexpected menu text %v", r.Texts())
	}
}

func TestMessageBoxTypesAndQueues(t *testing.T) {
	tasks := tween.NewRunner()
	b := NewMessageBox(0, 0, 400, 100, 0.1)

	b.Push(tasks, "Hi!")
	b.Push(tasks, "Bye")
	if !b.Busy() {
		t.Fatal("Expected box to be typing")
	}

	tasks.Update(0.15)
	if b.Typing() != "H" {
		t.Errorf("Expected partial line H, got %q", b.Typing())
	}

	tasks.Update(0.2)
	if got := b.Lines(); len(got) != 1 || got[0] != "Hi!" {
		t.Fatalf("Expected first line committed, got %v", got)
	}

	tasks.Update(0.5)
	if got := b.Lines(); len(got) != 2 || got[1] != "Bye" {
		t.Errorf("Expected queued line committed, got %v", got)
	}
	if b.Busy() {
		t.Error("Expected box idle")
	}
}

func TestMessageBoxSkip(t *testing.T) {
	tasks := tween.NewRunner()
	b := NewMessageBox(0, 0, 400, 100, 1)
	b.PushAll(tasks, []string{"one", "two", "three"})

	b.Skip()
	if b.Busy() {
		t.Error("Expected skip to finish typing")
	}
	if got := strings.Join(b.Lines(), ","); got != "one,two,three" {
		t.Errorf("Expected all lines, got %s", got)
	}
	tasks.Update(10)
	if len(b.Lines()) != 3 {
		t.Errorf("Expected cancelled typewriter not to commit again, got %v", b.Lines())
	}
}

func TestMessageBoxCancelledRunner(t *testing.T) {
	tasks := tween.NewRunner()
	tasks.Cancel()
	b := NewMessageBox(0, 0, 400, 100, 1)

	b.Push(tasks, "late")
	if b.Busy() {
		t.Error("Expected no typing on a cancelled runner")
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 140)
	if len(lines) < 2 {
		t.Fatalf("Expected wrapping, got %v", lines)
	}
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("Expected lines of at most 20 chars, got %q", l)
		}
	}
}
