package game

import (
	"context"
	"fmt"
	"image/color"
	"math"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"

	"chosenoffset.com/deepruins/internal/battle"
	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dungeon"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/tween"
	"chosenoffset.com/deepruins/internal/world"
)

// depthScale is the fraction of the half view visible at each depth
// boundary of the corridor, nearest first.
var depthScale = [...]float32{1.0, 0.62, 0.38, 0.24, 0.15}

const (
	viewDepth   = len(depthScale) - 1
	minimapCell = 6
)

var (
	colorCeiling = color.RGBA{25, 22, 30, 255}
	colorFloor   = color.RGBA{55, 45, 40, 255}
	colorWall    = color.RGBA{120, 110, 100, 255}
	colorSide    = color.RGBA{95, 85, 78, 255}
	colorExit    = color.RGBA{60, 200, 90, 255}
)

// DungeonScene is the first-person maze crawl
type DungeonScene struct {
	data *DungeonData
	sc   *scene.Context
	d    *dungeon.Dungeon

	white  render.Image
	moving bool
	bob    float32
	prev   dungeon.Cell
	notice toasts
}

// NewDungeonScene creates a dungeon scene for data.Area
func NewDungeonScene(data *DungeonData) *DungeonScene {
	return &DungeonScene{data: data}
}

// Init rebuilds the maze from the stored seed. A fresh entry re-seeds and
// starts at the entrance; a return from battle resumes at the saved cell.
func (s *DungeonScene) Init(ctx context.Context, sc *scene.Context) error {
	s.sc = sc
	if s.data == nil || s.data.Area == "" {
		return fmt.Errorf("dungeon: no area given")
	}
	area, ok := sc.Tables.Area(s.data.Area)
	if !ok {
		return fmt.Errorf("dungeon: unknown area %q", s.data.Area)
	}

	res := s.data.Result
	if res != nil && res.Outcome == battle.OutcomeVictory && res.EnemyID != "" {
		sc.Record.RecordDefeated(res.EnemyID)
	}

	seed, ok := sc.Record.DungeonSeed(area.ID)
	if s.data.Fresh || !ok {
		seed = int64(sc.Roller.Intn(math.MaxInt32))
		sc.Record.SetDungeonSeed(area.ID, seed)
	}
	s.d = dungeon.New(area, seed, sc.Rules.Dungeon(), sc.Record, sc.Record.Inventory())

	saved := sc.Record.Player().Dungeon
	if !s.data.Fresh && saved.Area == area.ID {
		if !s.d.Place(dungeon.Cell{X: saved.X, Y: saved.Y}, dungeon.Facing(saved.Facing)) {
			sc.Logger().Warnf("Saved dungeon cell %d,%d is a wall, starting at the entrance", saved.X, saved.Y)
		}
	}
	s.prev = s.d.Pos
	sc.Record.EnterArea(area.ID)
	s.storePosition()

	sc.Logger().WithFields(log.Fields{
		"area":     area.ID,
		"seed":     seed,
		"entities": len(s.d.Entities()),
	}).Info("Dungeon built")

	if res != nil {
		s.notice.show(resultSummary(res))
	} else if s.data.Fresh {
		s.notice.show(fmt.Sprintf("You enter %s.", area.Name))
	}
	return nil
}

func (s *DungeonScene) storePosition() {
	pos := s.d.Pos
	s.sc.Record.UpdatePlayer(func(p *gamedata.Player) {
		p.Dungeon = gamedata.DungeonPosition{Area: s.d.Area.ID, X: pos.X, Y: pos.Y, Facing: int(s.d.Facing)}
	})
}

func (s *DungeonScene) Update() error {
	s.notice.update(s.sc.DT())
	if s.moving {
		return nil
	}
	input := s.sc.Input

	if input.IsKeyJustPressed(render.KeyEscape) {
		return s.leave("You left the dungeon.")
	}

	switch {
	case input.IsKeyPressed(render.KeyUp), input.IsKeyPressed(render.KeyW):
		s.walk(s.d.Forward, input.IsKeyJustPressed(render.KeyUp) || input.IsKeyJustPressed(render.KeyW))
	case input.IsKeyPressed(render.KeyDown), input.IsKeyPressed(render.KeyS):
		s.walk(s.d.Back, input.IsKeyJustPressed(render.KeyDown) || input.IsKeyJustPressed(render.KeyS))
	case input.IsKeyJustPressed(render.KeyLeft), input.IsKeyJustPressed(render.KeyA):
		s.d.TurnLeft()
		s.animate(nil)
	case input.IsKeyJustPressed(render.KeyRight), input.IsKeyJustPressed(render.KeyD):
		s.d.TurnRight()
		s.animate(nil)
	}
	return nil
}

// walk attempts a step and resolves the destination once the step
// animation finishes.
func (s *DungeonScene) walk(step func() bool, fresh bool) {
	from := s.d.Pos
	if !step() {
		if fresh {
			s.notice.show("A wall blocks the way.")
		}
		return
	}
	s.prev = from
	s.animate(s.arrive)
}

// animate blocks input for one step duration while the view bobs.
func (s *DungeonScene) animate(then func()) {
	s.moving = true
	s.storePosition()
	seconds := float32(s.sc.Rules.DungeonStepSeconds)
	s.sc.Tasks.Go(tween.Tween(0, 1, seconds, ease.Linear, func(v float32) {
		s.bob = v
	}), func() {
		s.moving = false
		s.bob = 0
		if then != nil {
			then()
		}
	})
}

// arrive resolves whatever is on the cell just entered.
func (s *DungeonScene) arrive() {
	if s.d.AtExit() {
		s.leave("You found the way out.")
		return
	}

	if e, ok := s.d.EntityAt(s.d.Pos); ok {
		switch e.Kind {
		case dungeon.EntityEnemy:
			s.fightGuard(e)
			return
		case dungeon.EntityTreasure:
			s.openChest(e)
		case dungeon.EntityScroll:
			s.readScroll(e)
		}
		return
	}

	if s.d.CheckEncounter(s.sc.Roller) {
		if stats, ok := world.PickEncounter(s.sc.Roller, s.sc.Tables, s.sc.Tables.Wanderers); ok {
			s.startBattle(stats, "")
		}
	}
}

// fightGuard starts a battle with a placed enemy. The fight happens at the
// threshold: the player is put back on the cell they came from, so an
// escape leaves the guard standing ahead of them.
func (s *DungeonScene) fightGuard(e *dungeon.Entity) {
	tpl, ok := s.sc.Tables.Enemy(e.Enemy)
	if !ok {
		s.sc.Logger().Warnf("Entity %s names unknown enemy %s", e.ID, e.Enemy)
		s.d.Remove(e)
		return
	}
	stats := content.RollEnemy(s.sc.Roller, tpl, max(0, s.d.Area.Difficulty-1))
	s.d.Pos = s.prev
	s.startBattle(stats, e.ID)
}

func (s *DungeonScene) startBattle(stats content.EnemyStats, id string) {
	s.storePosition()
	s.sc.Logger().WithFields(log.Fields{"enemy": stats.TemplateID, "id": id}).Info("Dungeon battle")
	s.switchTo(SceneBattle, &BattleData{Enemy: stats, EnemyID: id, Return: SceneDungeon, Area: s.d.Area.ID})
}

func (s *DungeonScene) openChest(e *dungeon.Entity) {
	s.sc.Record.MarkCollected(e.ID)
	s.d.Remove(e)
	item, err := s.sc.Tables.Item(e.Item)
	if err != nil {
		s.sc.Logger().Warnf("Chest %s holds unknown item %s", e.ID, e.Item)
		return
	}
	s.sc.Record.Inventory().AddItem(item.ID, 1)
	s.notice.show(fmt.Sprintf("Found %s!", item.Name))
}

func (s *DungeonScene) readScroll(e *dungeon.Entity) {
	s.d.Remove(e)
	loc, ok := s.sc.Tables.Scroll(e.Scroll)
	if !ok {
		return
	}
	learned := s.sc.Record.Inventory().LearnSpellFromScroll(loc.ID)
	if len(learned) == 0 {
		s.notice.show(fmt.Sprintf("The scroll from %s holds nothing new.", loc.Name))
		return
	}
	names := make([]string, len(learned))
	for i, sp := range learned {
		names[i] = sp.Name
	}
	s.notice.show(fmt.Sprintf("Read the scroll of %s. Learned %s!", loc.Name, strings.Join(names, ", ")))
}

func (s *DungeonScene) leave(message string) error {
	s.storePosition()
	s.switchTo(SceneWorldMap, &WorldMapData{Message: message})
	return nil
}

func (s *DungeonScene) switchTo(name string, data any) {
	if err := s.sc.Switch(name, data); err != nil {
		s.sc.Logger().Warnf("Switch to %s refused: %v", name, err)
	}
}

func (s *DungeonScene) Draw(screen render.Image) {
	if s.white == nil {
		s.white = s.sc.Renderer.NewImage(1, 1)
		s.white.Fill(color.White)
	}
	s.drawCorridor(screen)
	s.drawMinimap(screen)
	drawHUD(s.sc, screen)

	r := s.sc.Renderer
	r.DrawText(screen, fmt.Sprintf("%s  facing %s", s.d.Area.Name, s.d.Facing), 10, 96, colorText, 1)
	r.DrawText(screen, "W/S step  A/D turn  Esc leave", 10, s.sc.Height-16, colorText, 1)
	drawToasts(s.sc, screen, &s.notice)
}

// relative returns the cell depth steps ahead and side steps to the right.
func (s *DungeonScene) relative(depth, side int) dungeon.Cell {
	fx, fy := s.d.Facing.Delta()
	rx, ry := s.d.Facing.Right().Delta()
	return dungeon.Cell{
		X: s.d.Pos.X + fx*depth + rx*side,
		Y: s.d.Pos.Y + fy*depth + ry*side,
	}
}

func (s *DungeonScene) wall(c dungeon.Cell) bool {
	return s.d.Maze.IsWall(c.X, c.Y)
}

// drawCorridor draws the view ahead as nested trapezoids, far to near.
func (s *DungeonScene) drawCorridor(screen render.Image) {
	r := s.sc.Renderer
	w, h := float32(s.sc.Width), float32(s.sc.Height)
	cx := w / 2
	cy := h/2 + float32(math.Sin(float64(s.bob)*math.Pi))*6

	r.FillRect(screen, 0, 0, w, cy, colorCeiling)
	r.FillRect(screen, 0, cy, w, h-cy, colorFloor)

	// Find the first wall straight ahead; nothing beyond it is visible.
	far := viewDepth
	for d := 1; d <= viewDepth; d++ {
		if s.wall(s.relative(d, 0)) {
			far = d
			break
		}
	}

	hw := func(d int) float32 { return cx * depthScale[d] }
	hh := func(d int) float32 { return (h / 2) * depthScale[d] }

	var vs []render.Vertex
	var is []uint16
	for d := far - 1; d >= 0; d-- {
		shade := 1 - 0.18*float32(d)
		for _, side := range []int{-1, 1} {
			near, deep := hw(d)*float32(side), hw(d+1)*float32(side)
			if s.wall(s.relative(d, side)) {
				vs, is = render.Quad(vs, is, [4][2]float32{
					{cx + near, cy - hh(d)},
					{cx + deep, cy - hh(d+1)},
					{cx + deep, cy + hh(d+1)},
					{cx + near, cy + hh(d)},
				}, scale(colorWall, shade))
				continue
			}
			// Side passage: the far wall of the opening faces the player.
			vs, is = render.Quad(vs, is, [4][2]float32{
				{cx + near, cy - hh(d+1)},
				{cx + deep, cy - hh(d+1)},
				{cx + deep, cy + hh(d+1)},
				{cx + near, cy + hh(d+1)},
			}, scale(colorSide, shade*0.8))
		}
	}

	front := s.relative(far, 0)
	if s.wall(front) {
		clr := scale(colorWall, 1-0.18*float32(far))
		vs, is = render.Quad(vs, is, [4][2]float32{
			{cx - hw(far), cy - hh(far)},
			{cx + hw(far), cy - hh(far)},
			{cx + hw(far), cy + hh(far)},
			{cx - hw(far), cy + hh(far)},
		}, clr)
	}
	if len(vs) > 0 {
		screen.DrawTriangles(vs, is, s.white, &render.DrawTrianglesOptions{})
	}

	for d := far - 1; d >= 1; d-- {
		c := s.relative(d, 0)
		size := float64(hh(d)+hh(d+1)) * 0.7
		top := float64(cy) + float64(hh(d+1)) - size
		if c == s.d.Maze.Exit() {
			r.FillRect(screen, cx-hw(d+1)/2, cy+hh(d+1)-8, hw(d+1), 8, colorExit)
		}
		e, ok := s.d.EntityAt(c)
		if !ok {
			continue
		}
		drawSprite(s.sc, screen, entitySprite(e), float64(cx)-size/2, top, size)
	}
}

func entitySprite(e *dungeon.Entity) string {
	switch e.Kind {
	case dungeon.EntityTreasure:
		return "chest"
	case dungeon.EntityScroll:
		return "scroll"
	}
	return "enemy_" + e.Enemy
}

func scale(c color.RGBA, f float32) color.RGBA {
	f = min(max(f, 0), 1)
	return color.RGBA{uint8(float32(c.R) * f), uint8(float32(c.G) * f), uint8(float32(c.B) * f), c.A}
}

func (s *DungeonScene) drawMinimap(screen render.Image) {
	r := s.sc.Renderer
	m := s.d.Maze
	ox := float32(s.sc.Width - m.W*minimapCell - 10)
	oy := float32(10)

	r.FillRect(screen, ox-4, oy-4, float32(m.W*minimapCell+8), float32(m.H*minimapCell+8), colorPanel)
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			if m.IsWall(x, y) {
				continue
			}
			r.FillRect(screen, ox+float32(x*minimapCell), oy+float32(y*minimapCell), minimapCell, minimapCell, color.RGBA{90, 80, 70, 255})
		}
	}

	exit := m.Exit()
	r.FillRect(screen, ox+float32(exit.X*minimapCell), oy+float32(exit.Y*minimapCell), minimapCell, minimapCell, colorExit)

	for _, e := range s.d.Entities() {
		clr := color.RGBA{220, 60, 60, 255}
		switch e.Kind {
		case dungeon.EntityTreasure:
			clr = color.RGBA{230, 200, 60, 255}
		case dungeon.EntityScroll:
			clr = color.RGBA{80, 200, 230, 255}
		}
		r.FillRect(screen, ox+float32(e.Cell.X*minimapCell)+1, oy+float32(e.Cell.Y*minimapCell)+1, minimapCell-2, minimapCell-2, clr)
	}

	px := ox + float32(s.d.Pos.X*minimapCell) + minimapCell/2
	py := oy + float32(s.d.Pos.Y*minimapCell) + minimapCell/2
	r.FillCircle(screen, px, py, minimapCell/2, color.White)
	dx, dy := s.d.Facing.Delta()
	r.FillRect(screen, px+float32(dx*minimapCell/2)-1, py+float32(dy*minimapCell/2)-1, 2, 2, colorHighText)
}

func (s *DungeonScene) Destroy() {
	if s.white != nil {
		s.white.Dispose()
		s.white = nil
	}
}
