package game

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"chosenoffset.com/deepruins/internal/assets"
	"chosenoffset.com/deepruins/internal/config"
	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/render"
	"chosenoffset.com/deepruins/internal/render/headless"
	"chosenoffset.com/deepruins/internal/scene"
	"chosenoffset.com/deepruins/internal/storage"
	"chosenoffset.com/deepruins/internal/storage/file"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events map[string]int
}

func (p *recordingPublisher) Publish(kind string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[kind]++
}

func (p *recordingPublisher) count(kind string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[kind]
}

type harness struct {
	mgr      *scene.Manager
	input    *headless.Input
	renderer *headless.Renderer
	record   *gamedata.Record
	tables   *content.Tables
	store    storage.Store
	pub      *recordingPublisher
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("Failed to load content: %v", err)
	}
	store, err := file.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	rules := config.DefaultRules()
	rules.DungeonEncounterRate = 0
	rules.EncounterRate = 0

	h := &harness{
		input:    headless.NewInput(),
		renderer: headless.NewRenderer(),
		record:   gamedata.New(tables),
		tables:   tables,
		store:    store,
		pub:      &recordingPublisher{events: map[string]int{}},
	}
	services := &scene.Services{
		Record:    h.record,
		Tables:    tables,
		Renderer:  h.renderer,
		Input:     h.input,
		Textures:  assets.NewLibrary(h.renderer, nil),
		Roller:    dice.NewSeededRoller(7),
		Rules:     rules,
		Store:     store,
		Slot:      "test",
		Publisher: h.pub,
		Width:     800,
		Height:    600,
	}
	h.mgr = scene.NewManager(services, scene.Options{Initial: SceneMenu, FadeSeconds: 0.05, TPS: 60})
	Register(h.mgr)
	return h
}

func (h *harness) switchTo(t *testing.T, name string, data any) {
	t.Helper()
	if err := h.mgr.SwitchTo(name, data); err != nil {
		t.Fatalf("Failed to switch to %s: %v", name, err)
	}
	h.settle(t)
}

// settle ticks until the transition finishes.
func (h *harness) settle(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.mgr.InTransition() {
		if time.Now().After(deadline) {
			t.Fatal("Transition did not finish")
		}
		if err := h.mgr.Update(); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
		time.Sleep(time.Millisecond)
	}
}

// press holds keys for exactly one tick.
func (h *harness) press(t *testing.T, keys ...render.Key) {
	t.Helper()
	h.input.Press(keys...)
	if err := h.mgr.Update(); err != nil {
		t.Fatalf("Failed to update: %v", err)
	}
	h.input.Tick()
}

// idle runs ticks with no input
func (h *harness) idle(t *testing.T, ticks int) {
	t.Helper()
	for i := 0; i < ticks; i++ {
		if err := h.mgr.Update(); err != nil {
			t.Fatalf("Failed to update: %v", err)
		}
	}
}

func (h *harness) draw() {
	h.renderer.Reset()
	h.mgr.Draw(h.renderer.NewImage(800, 600))
}

func TestRegisterNamesAllScenes(t *testing.T) {
	h := newHarness(t)
	want := []string{SceneBattle, SceneDungeon, SceneMenu, SceneWorldMap}
	if got := h.mgr.Registered(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestNewGameGrantsStarterKit(t *testing.T) {
	h := newHarness(t)
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.Level = 9 })
	h.switchTo(t, SceneMenu, nil)

	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneWorldMap {
		t.Fatalf("Expected worldmap, got %q", h.mgr.Current())
	}
	if lvl := h.record.Player().Level; lvl != 1 {
		t.Errorf("Expected level reset to 1, got %d", lvl)
	}
	inv := h.record.Inventory()
	if inv.Count("small_potion") != 3 {
		t.Errorf("Expected 3 small potions, got %d", inv.Count("small_potion"))
	}
	if !inv.HasSpell("fire_bolt") || !inv.HasSpell("heal") {
		t.Error("Expected level-1 spells learned")
	}
	if inv.HasSpell("ice_lance") {
		t.Error("Expected level-3 spell not learned")
	}
}

func TestContinueWithoutSaveStaysOnMenu(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneMenu, nil)

	h.press(t, render.KeyDown)
	h.press(t, render.KeyEnter)

	if h.mgr.InTransition() || h.mgr.Current() != SceneMenu {
		t.Fatalf("Expected to stay on menu, got %q", h.mgr.Current())
	}
	h.draw()
	if !h.renderer.Drew("No save data found") {
		t.Errorf("Expected no-save notice, got %v", h.renderer.Texts())
	}
}

func TestContinueLoadsSave(t *testing.T) {
	h := newHarness(t)
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.Level = 5 })
	if err := h.record.Save(context.Background(), h.store, "test"); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}
	h.record.Reset()

	h.switchTo(t, SceneMenu, nil)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneWorldMap {
		t.Fatalf("Expected worldmap, got %q", h.mgr.Current())
	}
	if lvl := h.record.Player().Level; lvl != 5 {
		t.Errorf("Expected saved level 5, got %d", lvl)
	}
}

func TestQuitTerminates(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneMenu, nil)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyDown)

	h.input.Press(render.KeyEnter)
	if err := h.mgr.Update(); err != render.ErrTerminate {
		t.Errorf("Expected ErrTerminate, got %v", err)
	}
}

func TestWorldMapQuickSave(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneWorldMap, nil)

	h.press(t, render.KeyF5)

	if _, err := h.store.Load(context.Background(), "test"); err != nil {
		t.Fatalf("Expected save slot written, got %v", err)
	}
	if h.pub.count("saved") != 1 {
		t.Errorf("Expected one saved event, got %d", h.pub.count("saved"))
	}
}

func TestWorldMapUsesHealingItem(t *testing.T) {
	h := newHarness(t)
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.HP = 10 })
	h.record.Inventory().AddItem("small_potion", 1)
	h.switchTo(t, SceneWorldMap, nil)

	h.press(t, render.KeyI)
	h.press(t, render.KeyEnter)

	p := h.record.Player()
	if p.HP != p.MaxHP {
		t.Errorf("Expected HP restored to %d, got %d", p.MaxHP, p.HP)
	}
	if n := h.record.Inventory().Count("small_potion"); n != 0 {
		t.Errorf("Expected potion consumed, got %d", n)
	}
}

func TestFieldUsable(t *testing.T) {
	h := newHarness(t)
	cases := map[string]bool{
		"small_potion":  true,
		"mana_potion":   true,
		"fire_bomb":     false,
		"strength_ring": false,
	}
	for id, want := range cases {
		item, err := h.tables.Item(id)
		if err != nil {
			t.Fatalf("Failed to find %s: %v", id, err)
		}
		if got := fieldUsable(item); got != want {
			t.Errorf("Expected fieldUsable(%s) = %v, got %v", id, want, got)
		}
	}
}

func TestWorldMapEntersDungeon(t *testing.T) {
	h := newHarness(t)
	area := h.tables.Areas[0]
	h.record.UpdatePlayer(func(p *gamedata.Player) {
		p.Position = gamedata.Position{X: area.X, Y: area.Y}
	})
	h.switchTo(t, SceneWorldMap, nil)

	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneDungeon {
		t.Fatalf("Expected dungeon, got %q (failure %v)", h.mgr.Current(), h.mgr.Failure())
	}
	if _, ok := h.record.DungeonSeed(area.ID); !ok {
		t.Error("Expected dungeon seed stored")
	}
	if h.record.World().CurrentArea != area.ID {
		t.Errorf("Expected current area %s, got %s", area.ID, h.record.World().CurrentArea)
	}
	pos := h.record.Player().Dungeon
	if pos.Area != area.ID || pos.X != 0 || pos.Y != 1 {
		t.Errorf("Expected entrance of %s, got %+v", area.ID, pos)
	}
}

func TestDungeonStepAndWall(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneDungeon, &DungeonData{Area: "ancient_ruins", Fresh: true})

	h.press(t, render.KeyW)
	h.idle(t, 30)
	pos := h.record.Player().Dungeon
	if pos.X != 1 || pos.Y != 1 {
		t.Fatalf("Expected step to 1,1, got %d,%d", pos.X, pos.Y)
	}

	// (1,0) is the outer wall
	h.press(t, render.KeyA)
	h.idle(t, 30)
	h.press(t, render.KeyW)
	h.idle(t, 30)
	pos = h.record.Player().Dungeon
	if pos.X != 1 || pos.Y != 1 {
		t.Errorf("Expected wall to block, got %d,%d", pos.X, pos.Y)
	}
	h.draw()
	if !h.renderer.Drew("A wall blocks the way.") {
		t.Errorf("Expected wall notice, got %v", h.renderer.Texts())
	}
}

func TestDungeonEscapeReturnsToWorldMap(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneDungeon, &DungeonData{Area: "ancient_ruins", Fresh: true})

	h.press(t, render.KeyEscape)
	h.settle(t)

	if h.mgr.Current() != SceneWorldMap {
		t.Errorf("Expected worldmap, got %q", h.mgr.Current())
	}
}

func TestDungeonUnknownAreaFails(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneDungeon, &DungeonData{Area: "nowhere"})

	if h.mgr.Failure() == nil {
		t.Fatal("Expected init failure for unknown area")
	}
}

func TestDungeonReturnKeepsSeedAndPosition(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneDungeon, &DungeonData{Area: "ancient_ruins", Fresh: true})
	h.press(t, render.KeyW)
	h.idle(t, 30)
	seed, _ := h.record.DungeonSeed("ancient_ruins")

	h.switchTo(t, SceneWorldMap, nil)
	h.switchTo(t, SceneDungeon, &DungeonData{Area: "ancient_ruins"})

	if got, _ := h.record.DungeonSeed("ancient_ruins"); got != seed {
		t.Errorf("Expected seed %d kept, got %d", seed, got)
	}
	pos := h.record.Player().Dungeon
	if pos.X != 1 || pos.Y != 1 {
		t.Errorf("Expected resume at 1,1, got %d,%d", pos.X, pos.Y)
	}
}

func weakEnemy() content.EnemyStats {
	return content.EnemyStats{TemplateID: "slime", Name: "Slime", Sprite: "slime", Level: 1, HP: 1, Attack: 1}
}

func TestBattleIgnoresInputWhileAnimating(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneBattle, &BattleData{Enemy: weakEnemy(), Return: SceneWorldMap})

	// The intro line is still typing, so Enter only skips it.
	h.press(t, render.KeyEnter)
	h.draw()
	if !h.renderer.Drew("appeared!") {
		t.Errorf("Expected intro line revealed, got %v", h.renderer.Texts())
	}
	if h.renderer.Drew("attacks!") {
		t.Error("Expected no attack while animating")
	}

	h.idle(t, 60)
	h.press(t, render.KeyEnter)
	h.idle(t, 120)
	h.draw()
	if !h.renderer.Drew("attacks!") {
		t.Errorf("Expected attack after animations, got %v", h.renderer.Texts())
	}
}

func TestBattleVictoryReturnsToDungeon(t *testing.T) {
	h := newHarness(t)
	id := "ancient_ruins_3_5"
	h.switchTo(t, SceneBattle, &BattleData{Enemy: weakEnemy(), EnemyID: id, Return: SceneDungeon, Area: "ancient_ruins"})

	h.idle(t, 120)
	h.press(t, render.KeyEnter)
	h.idle(t, 600)
	if h.mgr.Current() != SceneBattle {
		t.Fatalf("Expected battle to wait for confirmation, got %q", h.mgr.Current())
	}
	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneDungeon {
		t.Fatalf("Expected dungeon, got %q (failure %v)", h.mgr.Current(), h.mgr.Failure())
	}
	if !h.record.IsDefeated(id) {
		t.Error("Expected enemy recorded defeated")
	}
	if exp := h.record.Player().Exp; exp != 15 {
		t.Errorf("Expected 10+5*1 = 15 EXP, got %d", exp)
	}
	if h.pub.count("battle_log") == 0 {
		t.Error("Expected battle_log events")
	}
}

func TestBattleEscapeKeepsEnemy(t *testing.T) {
	h := newHarness(t)
	id := "ancient_ruins_7_9"
	enemy := weakEnemy()
	enemy.HP = 500
	enemy.Level = 1
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.Level = 10 })
	h.switchTo(t, SceneBattle, &BattleData{Enemy: enemy, EnemyID: id, Return: SceneDungeon, Area: "ancient_ruins"})

	h.idle(t, 120)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyEnter)
	h.idle(t, 300)
	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneDungeon {
		t.Fatalf("Expected dungeon, got %q", h.mgr.Current())
	}
	if h.record.IsDefeated(id) {
		t.Error("Expected escaped enemy to remain")
	}
}

func TestBattleSpellWithoutMPShowsMessage(t *testing.T) {
	h := newHarness(t)
	h.record.Inventory().LearnSpellsByLevel(1)
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.MP = 5 })
	h.switchTo(t, SceneBattle, &BattleData{Enemy: weakEnemy(), Return: SceneWorldMap})

	h.idle(t, 120)
	h.press(t, render.KeyDown)
	h.press(t, render.KeyEnter)
	h.idle(t, 30)
	h.draw()
	if !h.renderer.Drew("Fire Bolt (8 MP)") {
		t.Fatalf("Expected spell menu, got %v", h.renderer.Texts())
	}

	h.press(t, render.KeyEnter)
	h.idle(t, 120)
	h.draw()
	if !h.renderer.Drew("MP insufficient!") {
		t.Errorf("Expected MP insufficient message, got %v", h.renderer.Texts())
	}
	if !h.renderer.Drew("MP 5/") {
		t.Errorf("Expected MP untouched, got %v", h.renderer.Texts())
	}
	if !h.renderer.Drew("Attack") || h.renderer.Drew("Fire Bolt (8 MP)") {
		t.Errorf("Expected action selection again, got %v", h.renderer.Texts())
	}
	if h.renderer.Drew("attacks!") {
		t.Error("Expected no enemy turn after a refused spell")
	}
}

func TestBattleDefeatGoesToWorldMap(t *testing.T) {
	h := newHarness(t)
	h.record.UpdatePlayer(func(p *gamedata.Player) { p.HP = 1 })
	enemy := weakEnemy()
	enemy.HP = 500
	enemy.Attack = 200
	h.switchTo(t, SceneBattle, &BattleData{Enemy: enemy, Return: SceneDungeon, Area: "ancient_ruins"})

	h.idle(t, 120)
	h.press(t, render.KeyEnter)
	h.idle(t, 600)
	h.press(t, render.KeyEnter)
	h.settle(t)

	if h.mgr.Current() != SceneWorldMap {
		t.Fatalf("Expected worldmap after defeat, got %q", h.mgr.Current())
	}
	if hp := h.record.Player().HP; hp != 1 {
		t.Errorf("Expected HP 1 after defeat, got %d", hp)
	}
}

func TestBattleWithoutEnemyFails(t *testing.T) {
	h := newHarness(t)
	h.switchTo(t, SceneBattle, nil)

	if h.mgr.Failure() == nil {
		t.Error("Expected init failure without enemy")
	}
}
