package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tanema/gween/ease"

	"chosenoffset.com/deepruins/internal/battle"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/tween"
	"chosenoffset.com/deepruins/internal/ui"
)

const (
	lungeDistance = 24
	lungeSeconds  = 0.12
	floatSeconds  = 0.8
	slideSeconds  = 0.15
	enemySize     = 160
)

var (
	colorDamage = color.RGBA{255, 90, 90, 255}
	colorHeal   = color.RGBA{110, 240, 110, 255}
	colorMana   = color.RGBA{110, 160, 255, 255}
)

// floater is a number drifting up from a combatant
type floater struct {
	text  string
	side  battle.Side
	clr   color.RGBA
	rise  float32
	alpha float32
}

// BattleScene drives the battle resolver and animates its steps. Input is
// ignored while any animation or log line is still playing.
type BattleScene struct {
	data *BattleData
	sc   *scene.Context
	b    *battle.Battle

	log      *ui.MessageBox
	menu     *ui.Menu
	menuKind battle.MenuKind
	slide    float32

	lunge    [2]float32
	floaters []*floater
	result   *battle.Result
}

// NewBattleScene creates a battle against data.Enemy
func NewBattleScene(data *BattleData) *BattleScene {
	return &BattleScene{data: data}
}

func (s *BattleScene) Init(ctx context.Context, sc *scene.Context) error {
	s.sc = sc
	if s.data == nil || s.data.Enemy.Name == "" {
		return errors.New("battle: no enemy given")
	}
	if s.data.Return == "" {
		s.data.Return = SceneWorldMap
	}

	player := battle.NewPlayer(sc.Record.Player())
	enemy := battle.NewEnemy(s.data.Enemy)
	s.b = battle.New(player, enemy, s.data.EnemyID, sc.Record.Inventory(), sc.Tables, sc.Roller)

	s.log = ui.NewMessageBox(20, sc.Height-150, sc.Width-40, 130, float32(sc.Rules.TypewriterSeconds))
	s.menu = ui.NewMenu("Actions", sc.Width-240, 0, 220)
	s.menuKind = battle.MenuMain

	sc.Logger().WithFields(log.Fields{
		"enemy": s.data.Enemy.TemplateID,
		"level": s.data.Enemy.Level,
		"id":    s.data.EnemyID,
	}).Info("Battle started")

	s.play(s.b.Start())
	s.slideIn()
	return nil
}

func (s *BattleScene) Update() error {
	input := s.sc.Input
	confirm := input.IsKeyJustPressed(render.KeyEnter) || input.IsKeyJustPressed(render.KeySpace)

	if s.animating() {
		if confirm {
			s.log.Skip()
		}
		return nil
	}

	if s.result != nil {
		if confirm {
			s.route()
		}
		return nil
	}

	switch s.b.State() {
	case battle.StateEnemyTurn:
		step, err := s.b.EnemyTurn()
		if err != nil {
			return err
		}
		s.play(step)
	case battle.StateSelectAction:
		switch {
		case input.IsKeyJustPressed(render.KeyUp), input.IsKeyJustPressed(render.KeyW):
			s.b.MoveCursor(-1)
		case input.IsKeyJustPressed(render.KeyDown), input.IsKeyJustPressed(render.KeyS):
			s.b.MoveCursor(1)
		case input.IsKeyJustPressed(render.KeyEscape):
			s.b.Back()
		case confirm:
			step, submitted, err := s.b.Confirm()
			if err != nil {
				s.sc.Logger().Warnf("Action refused: %v", err)
				return nil
			}
			if submitted {
				s.play(step)
			}
		}
		if kind := s.b.Menu().Kind; kind != s.menuKind {
			s.menuKind = kind
			s.slideIn()
		}
	}
	return nil
}

// animating reports whether any tween or typewriter line is still running.
func (s *BattleScene) animating() bool {
	return s.sc.Tasks.Busy()
}

// play queues a step's log lines and animations, and settles the battle
// once a terminal state is reached.
func (s *BattleScene) play(step battle.Step) {
	s.log.PushAll(s.sc.Tasks, step.Log)
	for _, line := range step.Log {
		s.sc.Publish("battle_log", map[string]string{"line": line})
	}

	var seq []tween.Task
	for _, ev := range step.Events {
		switch ev.Kind {
		case battle.EventAttack:
			seq = append(seq, s.lungeTask(ev.Side))
		case battle.EventDamage:
			seq = append(seq, tween.Call(func() { s.float(ev.Side, fmt.Sprintf("-%d", ev.Amount), colorDamage) }))
		case battle.EventHeal:
			seq = append(seq, tween.Call(func() { s.float(ev.Side, fmt.Sprintf("+%d", ev.Amount), colorHeal) }))
		case battle.EventMana:
			seq = append(seq, tween.Call(func() { s.float(ev.Side, fmt.Sprintf("+%d MP", ev.Amount), colorMana) }))
		}
	}
	if len(seq) > 0 {
		s.sc.Tasks.Go(tween.Sequence(seq...), nil)
	}

	if step.State.Terminal() && s.result == nil {
		res := s.b.Finish(s.sc.Record)
		s.result = &res
		s.log.PushAll(s.sc.Tasks, s.b.ResultLog(res))
		s.sc.Logger().WithFields(log.Fields{
			"outcome": res.Outcome.String(),
			"exp":     res.ExpGained,
			"level":   res.NewLevel,
		}).Info("Battle finished")
	}
}

func (s *BattleScene) lungeTask(side battle.Side) tween.Task {
	set := func(v float32) { s.lunge[side] = v }
	return tween.Sequence(
		tween.Tween(0, lungeDistance, lungeSeconds, ease.OutQuad, set),
		tween.Tween(lungeDistance, 0, lungeSeconds, ease.InQuad, set),
	)
}

func (s *BattleScene) float(side battle.Side, text string, clr color.RGBA) {
	f := &floater{text: text, side: side, clr: clr, alpha: 1}
	s.floaters = append(s.floaters, f)
	s.sc.Tasks.Go(tween.Parallel(
		tween.Tween(0, -40, floatSeconds, ease.OutQuad, func(v float32) { f.rise = v }),
		tween.Tween(1, 0, floatSeconds, ease.InQuad, func(v float32) { f.alpha = v }),
	), func() {
		for i, o := range s.floaters {
			if o == f {
				s.floaters = append(s.floaters[:i], s.floaters[i+1:]...)
				break
			}
		}
	})
}

func (s *BattleScene) slideIn() {
	s.sc.Tasks.Go(tween.Tween(240, 0, slideSeconds, ease.OutQuad, func(v float32) {
		s.slide = v
	}), nil)
}

// route hands the result back. Defeat always ends on the world map.
func (s *BattleScene) route() {
	res := s.result
	name, data := s.data.Return, any(&WorldMapData{Result: res})
	switch {
	case res.Outcome == battle.OutcomeDefeat:
		name = SceneWorldMap
	case s.data.Return == SceneDungeon:
		data = &DungeonData{Area: s.data.Area, Result: res}
	}
	if err := s.sc.Switch(name, data); err != nil {
		s.sc.Logger().Warnf("Switch to %s refused: %v", name, err)
	}
}

func (s *BattleScene) Draw(screen render.Image) {
	r := s.sc.Renderer
	w, h := s.sc.Width, s.sc.Height
	screen.Fill(color.RGBA{20, 16, 28, 255})
	r.FillRect(screen, 0, float32(h)/2, float32(w), float32(h)/2, color.RGBA{30, 26, 36, 255})

	s.drawEnemy(screen)
	s.drawPlayer(screen)

	for _, f := range s.floaters {
		x, y := w/2, 90
		if f.side == battle.SidePlayer {
			x, y = 120, h-270
		}
		clr := f.clr
		clr.A = uint8(255 * max(0, min(f.alpha, 1)))
		r.DrawText(screen, f.text, x, y+int(f.rise), clr, 1.5)
	}

	if s.result == nil && s.b.State() == battle.StateSelectAction {
		s.drawMenu(screen)
	}
	s.log.Draw(screen, r)

	if s.result != nil && !s.animating() {
		r.DrawText(screen, "Press Enter to continue", w-230, h-170, colorHighText, 1)
	}
}

func (s *BattleScene) drawEnemy(screen render.Image) {
	r := s.sc.Renderer
	e := s.b.Enemy
	x := float64(s.sc.Width-enemySize) / 2
	y := 70 + float64(s.lunge[battle.SideEnemy])
	if e.Alive() {
		drawSprite(s.sc, screen, "enemy_"+e.Sprite, x, y, enemySize)
	}

	label := fmt.Sprintf("%s  Lv %d", e.Name, e.Level)
	lw, _ := r.MeasureText(label, 1)
	r.DrawText(screen, label, (s.sc.Width-lw)/2, 30, colorText, 1)
	drawBar(r, screen, float32(s.sc.Width)/2-80, 48, 160, 10, e.HP, e.MaxHP, colorHPBar)
	if st := statusLine(e); st != "" {
		r.DrawText(screen, st, int(x), int(y)+enemySize+6, colorMana, 1)
	}
}

func (s *BattleScene) drawPlayer(screen render.Image) {
	r := s.sc.Renderer
	p := s.b.Player
	x := float32(20)
	y := float32(s.sc.Height-250) - s.lunge[battle.SidePlayer]

	r.FillRect(screen, x, y, 240, 86, colorPanel)
	r.StrokeRect(screen, x, y, 240, 86, 2, colorBorder)
	r.DrawText(screen, fmt.Sprintf("%s  Lv %d", p.Name, p.Level), int(x)+10, int(y)+8, colorHighText, 1)
	r.DrawText(screen, fmt.Sprintf("HP %d/%d", p.HP, p.MaxHP), int(x)+10, int(y)+28, colorText, 1)
	drawBar(r, screen, x+120, y+30, 110, 10, p.HP, p.MaxHP, colorHPBar)
	r.DrawText(screen, fmt.Sprintf("MP %d/%d", p.MP, p.MaxMP), int(x)+10, int(y)+46, colorText, 1)
	drawBar(r, screen, x+120, y+48, 110, 10, p.MP, p.MaxMP, colorMPBar)
	if st := statusLine(p); st != "" {
		r.DrawText(screen, st, int(x)+10, int(y)+64, colorMana, 1)
	}
}

// statusLine lists lingering statuses and buffs
func statusLine(c *battle.Combatant) string {
	var parts []string
	for _, st := range c.Statuses {
		parts = append(parts, fmt.Sprintf("%s(%d)", st.Kind, st.Remaining))
	}
	for _, b := range c.Buffs {
		parts = append(parts, fmt.Sprintf("%s(%d)", b.Source, b.Remaining))
	}
	return strings.Join(parts, " ")
}

func (s *BattleScene) drawMenu(screen render.Image) {
	m := s.b.Menu()
	items := make([]ui.Item, len(m.Entries))
	for i, e := range m.Entries {
		items[i] = ui.Item{Label: e.Label, Enabled: e.Enabled}
	}
	switch m.Kind {
	case battle.MenuSpells:
		s.menu.Title = "Magic"
	case battle.MenuItems:
		s.menu.Title = "Items"
	default:
		s.menu.Title = "Actions"
	}
	s.menu.SetItems(items)
	s.menu.Cursor = m.Cursor

	y := s.log.Y - 10 - s.menu.Height()
	s.menu.DrawAt(screen, s.sc.Renderer, s.menu.X+int(s.slide), y)
}

func (s *BattleScene) Destroy() {
	s.floaters = nil
}
