package game

import (
	"context"
	"fmt"
	"image/color"
	"strings"

	"chosenoffset.com/deepruins/internal/battle"
	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/ui"
	"chosenoffset.com/deepruins/internal/world"
)

const (
	tileSize   = 40
	spriteSize = 32
)

// WorldMapScene is the free-roaming overworld
type WorldMapScene struct {
	data *WorldMapData
	sc   *scene.Context
	ow   *world.Overworld

	panelOpen bool
	panel     *ui.Menu
	notice    toasts
}

// NewWorldMapScene creates the world map. data may be nil.
func NewWorldMapScene(data *WorldMapData) *WorldMapScene {
	return &WorldMapScene{data: data}
}

func (s *WorldMapScene) Init(ctx context.Context, sc *scene.Context) error {
	s.sc = sc
	s.ow = world.New(sc.Rules.Overworld(sc.Width, sc.Height), sc.Tables, sc.Record.Player().Position)
	sc.Record.EnterArea("overworld")
	s.panel = ui.NewMenu("Items", sc.Width/2-180, 110, 360)

	if s.data != nil {
		if s.data.Result != nil {
			s.notice.show(resultSummary(s.data.Result))
		}
		if s.data.Message != "" {
			s.notice.show(s.data.Message)
		}
	}
	return nil
}

// resultSummary is the notice shown when a battle hands control back
func resultSummary(res *battle.Result) string {
	switch res.Outcome {
	case battle.OutcomeVictory:
		if res.LeveledUp {
			return fmt.Sprintf("Victory! Gained %d EXP and reached level %d.", res.ExpGained, res.NewLevel)
		}
		return fmt.Sprintf("Victory! Gained %d EXP.", res.ExpGained)
	case battle.OutcomeEscaped:
		return "You escaped."
	case battle.OutcomeDefeat:
		return "You were defeated and wake up on the road, barely alive."
	}
	return ""
}

func (s *WorldMapScene) Update() error {
	dt := s.sc.DT()
	s.notice.update(dt)
	s.ow.Update(dt)
	input := s.sc.Input

	if s.panelOpen {
		s.updatePanel()
		return nil
	}

	switch {
	case input.IsKeyJustPressed(render.KeyI):
		s.openPanel()
		return nil
	case input.IsKeyJustPressed(render.KeyF5):
		s.save()
		return nil
	case input.IsKeyJustPressed(render.KeyEscape):
		s.storePosition()
		return s.switchTo(SceneMenu, nil)
	}

	if area, ok := s.ow.NearbyArea(); ok && input.IsKeyJustPressed(render.KeyEnter) {
		s.storePosition()
		s.sc.Logger().WithField("area", area.ID).Info("Entering area")
		return s.switchTo(SceneDungeon, &DungeonData{Area: area.ID, Fresh: true})
	}

	in := world.Input{
		Up:    input.IsKeyPressed(render.KeyUp) || input.IsKeyPressed(render.KeyW),
		Down:  input.IsKeyPressed(render.KeyDown) || input.IsKeyPressed(render.KeyS),
		Left:  input.IsKeyPressed(render.KeyLeft) || input.IsKeyPressed(render.KeyA),
		Right: input.IsKeyPressed(render.KeyRight) || input.IsKeyPressed(render.KeyD),
	}
	if !s.ow.Move(in) {
		return nil
	}
	s.storePosition()

	if tr, ok := s.ow.NearbyTreasure(s.sc.Record.IsCollected); ok {
		s.collect(tr)
	}

	if s.ow.CheckEncounter(s.sc.Roller) {
		enemy, ok := world.PickEncounter(s.sc.Roller, s.sc.Tables, s.sc.Tables.Field)
		if ok {
			s.sc.Logger().WithField("enemy", enemy.TemplateID).Info("Random encounter")
			return s.switchTo(SceneBattle, &BattleData{Enemy: enemy, Return: SceneWorldMap})
		}
	}
	return nil
}

func (s *WorldMapScene) storePosition() {
	pos := s.ow.Pos
	s.sc.Record.UpdatePlayer(func(p *gamedata.Player) {
		p.Position = pos
	})
}

// collect opens an overworld chest. Each chest pays out once per save.
func (s *WorldMapScene) collect(tr *content.Treasure) {
	s.sc.Record.MarkCollected(tr.ID)
	inv := s.sc.Record.Inventory()

	if tr.Scroll != "" {
		loc, _ := s.sc.Tables.Scroll(tr.Scroll)
		name := tr.Scroll
		if loc != nil {
			name = loc.Name
		}
		learned := inv.LearnSpellFromScroll(tr.Scroll)
		if len(learned) == 0 {
			s.notice.show(fmt.Sprintf("Found a scroll from %s, but you already know its secrets.", name))
			return
		}
		names := make([]string, len(learned))
		for i, sp := range learned {
			names[i] = sp.Name
		}
		s.notice.show(fmt.Sprintf("Read a scroll from %s. Learned %s!", name, strings.Join(names, ", ")))
		return
	}

	qty := tr.Qty
	if qty <= 0 {
		qty = 1
	}
	item, err := s.sc.Tables.Item(tr.Item)
	if err != nil {
		s.sc.Logger().Warnf("Chest %s holds unknown item %s", tr.ID, tr.Item)
		return
	}
	inv.AddItem(item.ID, qty)
	s.notice.show(fmt.Sprintf("Found %s x%d!", item.Name, qty))
}

func (s *WorldMapScene) save() {
	s.storePosition()
	if err := s.sc.Save(context.Background()); err != nil {
		s.notice.show("Save failed.")
		return
	}
	s.notice.show("Game saved.")
}

func (s *WorldMapScene) openPanel() {
	s.panelOpen = true
	s.refreshPanel()
}

func (s *WorldMapScene) refreshPanel() {
	var items []ui.Item
	for _, e := range s.sc.Record.Inventory().Items() {
		items = append(items, ui.Item{
			Label:   fmt.Sprintf("%s x%d", e.Item.Name, e.Count),
			Enabled: fieldUsable(e.Item),
			Value:   e.Item.ID,
		})
	}
	if len(items) == 0 {
		items = []ui.Item{{Label: "(empty)"}}
	}
	s.panel.SetItems(items)
}

func (s *WorldMapScene) updatePanel() {
	input := s.sc.Input
	if input.IsKeyJustPressed(render.KeyI) || input.IsKeyJustPressed(render.KeyEscape) {
		s.panelOpen = false
		return
	}
	if !s.panel.Update(input) {
		return
	}
	item, _ := s.panel.Selected()
	line, err := useFieldItem(s.sc, item.Value.(string))
	if err != nil {
		s.notice.show(err.Error())
		return
	}
	s.notice.show(line)
	s.refreshPanel()
}

func (s *WorldMapScene) switchTo(name string, data any) error {
	if err := s.sc.Switch(name, data); err != nil {
		s.sc.Logger().Warnf("Switch to %s refused: %v", name, err)
	}
	return nil
}

func (s *WorldMapScene) Draw(screen render.Image) {
	r := s.sc.Renderer
	camX, camY := s.ow.Camera.X, s.ow.Camera.Y
	rules := s.ow.Rules()

	screen.Fill(color.RGBA{34, 68, 34, 255})
	s.drawGround(screen, camX, camY, rules)

	for _, a := range s.ow.Areas() {
		x, y := a.X-camX, a.Y-camY
		drawSprite(s.sc, screen, "area_"+a.ID, x-spriteSize/2, y-spriteSize/2, spriteSize)
		w, _ := r.MeasureText(a.Name, 1)
		r.DrawText(screen, a.Name, int(x)-w/2, int(y)+spriteSize/2+4, colorText, 1)
	}

	for _, tr := range s.ow.Treasures() {
		if s.sc.Record.IsCollected(tr.ID) {
			continue
		}
		drawSprite(s.sc, screen, "chest", tr.X-camX-12, tr.Y-camY-12, 24)
	}

	drawSprite(s.sc, screen, "player", s.ow.Pos.X-camX-spriteSize/2, s.ow.Pos.Y-camY-spriteSize/2, spriteSize)

	drawHUD(s.sc, screen)
	r.DrawText(screen, "Arrows/WASD move  I items  F5 save  Esc title", 240, 16, colorText, 1)

	if area, ok := s.ow.NearbyArea(); ok && !s.panelOpen {
		prompt := fmt.Sprintf("Press Enter to enter %s", area.Name)
		w, _ := r.MeasureText(prompt, 1)
		x := (s.sc.Width - w) / 2
		r.FillRect(screen, float32(x-10), 96, float32(w+20), 24, colorPanel)
		r.DrawText(screen, prompt, x, 100, colorHighText, 1)
	}

	if s.panelOpen {
		s.drawPanel(screen)
	}
	drawToasts(s.sc, screen, &s.notice)
}

// drawGround draws a checkered grass pattern aligned to world coordinates.
func (s *WorldMapScene) drawGround(screen render.Image, camX, camY float64, rules world.Rules) {
	r := s.sc.Renderer
	dark := color.RGBA{30, 60, 30, 255}
	startX := int(camX) / tileSize
	startY := int(camY) / tileSize
	for ty := startY; ty <= startY+s.sc.Height/tileSize+1; ty++ {
		for tx := startX; tx <= startX+s.sc.Width/tileSize+1; tx++ {
			if (tx+ty)%2 == 0 {
				continue
			}
			r.FillRect(screen, float32(float64(tx*tileSize)-camX), float32(float64(ty*tileSize)-camY), tileSize, tileSize, dark)
		}
	}
	r.StrokeRect(screen, float32(-camX), float32(-camY), float32(rules.Width), float32(rules.Height), 4, color.RGBA{20, 40, 20, 255})
}

func (s *WorldMapScene) drawPanel(screen render.Image) {
	r := s.sc.Renderer
	s.panel.Draw(screen, r)

	spells := s.sc.Record.Inventory().Spells()
	x := s.panel.X
	y := s.panel.Y + s.panel.Height() + 10
	h := 30 + 18*len(spells)
	r.FillRect(screen, float32(x), float32(y), float32(s.panel.Width), float32(h), colorPanel)
	r.StrokeRect(screen, float32(x), float32(y), float32(s.panel.Width), float32(h), 2, colorBorder)
	r.DrawText(screen, "Spells", x+10, y+8, colorHighText, 1)
	for i, sp := range spells {
		line := fmt.Sprintf("%s (%d MP)", sp.Name, sp.MPCost)
		r.DrawText(screen, line, x+10, y+28+18*i, colorText, 1)
	}
}

func (s *WorldMapScene) Destroy() {}
