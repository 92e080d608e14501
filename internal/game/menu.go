package game

import (
	"context"
	"errors"
	"image/color"

	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/storage"
	"chosenoffset.com/deepruins/internal/ui"
)

type menuChoice int

const (
	choiceNewGame menuChoice = iota
	choiceContinue
	choiceQuit
)

// MenuScene is the title screen
type MenuScene struct {
	sc      *scene.Context
	menu    *ui.Menu
	hasSave bool
	notice  toasts
}

// NewMenuScene creates the title screen
func NewMenuScene() *MenuScene {
	return &MenuScene{}
}

// Init checks whether a save exists so Continue can be marked.
func (s *MenuScene) Init(ctx context.Context, sc *scene.Context) error {
	s.sc = sc
	if sc.Store != nil {
		_, err := sc.Store.Load(ctx, sc.Slot)
		switch {
		case err == nil:
			s.hasSave = true
		case !errors.Is(err, storage.ErrNotFound):
			sc.Logger().Warnf("Failed to check save slot %s: %v", sc.Slot, err)
		}
	}

	continueLabel := "Continue"
	if !s.hasSave {
		continueLabel = "Continue (no save)"
	}
	s.menu = ui.NewMenu("", sc.Width/2-100, sc.Height/2, 200)
	s.menu.SetItems([]ui.Item{
		{Label: "New Game", Enabled: true, Value: choiceNewGame},
		{Label: continueLabel, Enabled: true, Value: choiceContinue},
		{Label: "Quit", Enabled: true, Value: choiceQuit},
	})
	return nil
}

func (s *MenuScene) Update() error {
	s.notice.update(s.sc.DT())
	if !s.menu.Update(s.sc.Input) {
		return nil
	}
	item, _ := s.menu.Selected()
	switch item.Value.(menuChoice) {
	case choiceNewGame:
		newGame(s.sc)
		return s.switchTo(SceneWorldMap, &WorldMapData{Message: "Your journey begins. Find the ruins and recover the lost scrolls."})
	case choiceContinue:
		if problem := s.load(); problem != "" {
			s.notice.show(problem)
			return nil
		}
		return s.switchTo(SceneWorldMap, &WorldMapData{Message: "Welcome back."})
	case choiceQuit:
		return render.ErrTerminate
	}
	return nil
}

// load reads the save slot into the record. It returns the notice to show
// when nothing could be loaded.
func (s *MenuScene) load() string {
	if s.sc.Store == nil {
		return "No save data found"
	}
	err := s.sc.Record.Load(context.Background(), s.sc.Store, s.sc.Slot)
	if errors.Is(err, storage.ErrNotFound) {
		return "No save data found"
	}
	if err != nil {
		s.sc.Logger().Errorf("Failed to load save: %v", err)
		return "Save data could not be read"
	}
	s.sc.Logger().WithField("slot", s.sc.Slot).Info("Loaded saved game")
	return ""
}

// switchTo ignores a rejected switch; the menu stays usable.
func (s *MenuScene) switchTo(name string, data any) error {
	if err := s.sc.Switch(name, data); err != nil {
		s.sc.Logger().Warnf("Switch to %s refused: %v", name, err)
	}
	return nil
}

func (s *MenuScene) Draw(screen render.Image) {
	r := s.sc.Renderer
	screen.Fill(color.RGBA{15, 12, 25, 255})

	title := "DEEP RUINS"
	w, _ := r.MeasureText(title, 3)
	r.DrawText(screen, title, (s.sc.Width-w)/2, s.sc.Height/4, colorHighText, 3)
	sub := "A dungeon crawl"
	w, _ = r.MeasureText(sub, 1)
	r.DrawText(screen, sub, (s.sc.Width-w)/2, s.sc.Height/4+50, colorText, 1)

	s.menu.Draw(screen, r)
	drawToasts(s.sc, screen, &s.notice)
}

func (s *MenuScene) Destroy() {}
