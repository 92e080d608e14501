package dungeon

import (
	"testing"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
)

type fakeProgress struct {
	defeated  map[string]bool
	collected map[string]bool
	scrolls   map[string]bool
}

func newFakeProgress() *fakeProgress {
	return &fakeProgress{
		defeated:  make(map[string]bool),
		collected: make(map[string]bool),
		scrolls:   make(map[string]bool),
	}
}

func (f *fakeProgress) IsDefeated(id string) bool  { return f.defeated[id] }
func (f *fakeProgress) IsCollected(id string) bool { return f.collected[id] }
func (f *fakeProgress) HasScroll(loc string) bool  { return f.scrolls[loc] }

func ruins(t *testing.T) *content.Area {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("Failed to load content: %v", err)
	}
	area, ok := tables.Area("ancient_ruins")
	if !ok {
		t.Fatal("Expected ancient_ruins area")
	}
	return area
}

func TestGenerateIsConnected(t *testing.T) {
	m := Generate(21, 21, dice.NewSeededRoller(7))

	if m.IsWall(0, 1) || m.IsWall(20, 19) {
		t.Fatal("Expected entrance and exit to be open")
	}
	if !m.IsWall(-1, 0) || !m.IsWall(21, 5) {
		t.Error("Expected out of bounds to be walls")
	}
	for y := 1; y < m.H; y += 2 {
		for x := 1; x < m.W; x += 2 {
			if m.IsWall(x, y) {
				t.Errorf("Expected odd cell (%d,%d) to be carved", x, y)
			}
		}
	}

	seen := map[Cell]bool{m.Entrance(): true}
	queue := []Cell{m.Entrance()}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		for _, d := range []Cell{{0, -1}, {1, 0}, {0, 1}, {-1, 0}} {
			n := Cell{c.X + d.X, c.Y + d.Y}
			if !m.IsWall(n.X, n.Y) && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	if len(seen) != len(m.Passages()) {
		t.Errorf("Expected all %d passages reachable, got %d", len(m.Passages()), len(seen))
	}
	if !seen[m.Exit()] {
		t.Error("Expected exit reachable from entrance")
	}
}

func TestSameSeedRebuildsIdentically(t *testing.T) {
	area := ruins(t)
	a := New(area, 42, DefaultRules(), newFakeProgress(), newFakeProgress())
	b := New(area, 42, DefaultRules(), newFakeProgress(), newFakeProgress())

	for y := 0; y < a.Maze.H; y++ {
		for x := 0; x < a.Maze.W; x++ {
			if a.Maze.IsWall(x, y) != b.Maze.IsWall(x, y) {
				t.Fatalf("Expected identical mazes, differ at (%d,%d)", x, y)
			}
		}
	}
	if len(a.Entities()) != len(b.Entities()) {
		t.Fatalf("Expected identical entity counts, got %d and %d", len(a.Entities()), len(b.Entities()))
	}
	for _, e := range a.Entities() {
		other, ok := b.EntityAt(e.Cell)
		if !ok || other.ID != e.ID || other.Kind != e.Kind {
			t.Errorf("Expected entity %s in both builds", e.ID)
		}
	}
}

func TestDefeatedEnemiesFilteredOnRebuild(t *testing.T) {
	area := ruins(t)
	rules := DefaultRules()
	rules.EnemyDensity = 1

	progress := newFakeProgress()
	first := New(area, 9, rules, progress, progress)
	entities := first.Entities()
	if len(entities) == 0 {
		t.Fatal("Expected guards on every passage")
	}
	gone := entities[0]
	if gone.Kind != EntityEnemy || gone.Enemy != "dungeon_guard" {
		t.Fatalf("Expected dungeon_guard, got %+v", gone)
	}
	if gone.ID != EntityID("ancient_ruins", gone.Cell) {
		t.Errorf("Expected stable id, got %s", gone.ID)
	}

	progress.defeated[gone.ID] = true
	second := New(area, 9, rules, progress, progress)
	if _, ok := second.EntityAt(gone.Cell); ok {
		t.Error("Expected defeated guard to stay gone")
	}
	if len(second.Entities()) != len(entities)-1 {
		t.Errorf("Expected %d entities, got %d", len(entities)-1, len(second.Entities()))
	}
}

func TestScrollPlacedUntilAllRead(t *testing.T) {
	area := ruins(t)
	rules := DefaultRules()
	rules.EnemyDensity = 0
	rules.TreasureDensity = 0

	progress := newFakeProgress()
	d := New(area, 3, rules, progress, progress)
	entities := d.Entities()
	if len(entities) != 1 || entities[0].Kind != EntityScroll {
		t.Fatalf("Expected a single scroll, got %+v", entities)
	}
	if entities[0].Scroll != area.Scrolls[0] {
		t.Errorf("Expected %s, got %s", area.Scrolls[0], entities[0].Scroll)
	}

	progress.scrolls[area.Scrolls[0]] = true
	d = New(area, 3, rules, progress, progress)
	if got := d.Entities()[0].Scroll; got != area.Scrolls[1] {
		t.Errorf("Expected next unread scroll %s, got %s", area.Scrolls[1], got)
	}

	for _, loc := range area.Scrolls {
		progress.scrolls[loc] = true
	}
	d = New(area, 3, rules, progress, progress)
	if len(d.Entities()) != 0 {
		t.Errorf("Expected no scroll once all are read, got %d entities", len(d.Entities()))
	}
}

func TestMovementBlockedByWalls(t *testing.T) {
	d := New(ruins(t), 1, DefaultRules(), newFakeProgress(), newFakeProgress())

	if d.Pos != (Cell{0, 1}) || d.Facing != East {
		t.Fatalf("Expected start at entrance facing east, got %v %v", d.Pos, d.Facing)
	}

	d.TurnLeft()
	if d.Facing != North {
		t.Errorf("Expected north after left turn, got %v", d.Facing)
	}
	if d.Forward() {
		t.Error("Expected border wall to block")
	}
	if d.Pos != (Cell{0, 1}) {
		t.Errorf("Expected position unchanged, got %v", d.Pos)
	}

	d.TurnRight()
	if !d.Forward() {
		t.Fatal("Expected step into (1,1)")
	}
	if d.Pos != (Cell{1, 1}) {
		t.Errorf("Expected (1,1), got %v", d.Pos)
	}
	if !d.Back() || d.Pos != (Cell{0, 1}) {
		t.Errorf("Expected back to entrance, got %v", d.Pos)
	}
	if d.Facing != East {
		t.Errorf("Expected back step to keep facing, got %v", d.Facing)
	}
}

func TestTurnsWrap(t *testing.T) {
	f := North
	for i := 0; i < 4; i++ {
		f = f.Right()
	}
	if f != North {
		t.Errorf("Expected four right turns to wrap, got %v", f)
	}
	if North.Left() != West {
		t.Errorf("Expected west, got %v", North.Left())
	}
}

func TestExitAndPlace(t *testing.T) {
	d := New(ruins(t), 5, DefaultRules(), newFakeProgress(), newFakeProgress())

	if d.AtExit() {
		t.Error("Expected entrance not to be the exit")
	}
	if d.Place(Cell{0, 0}, South) {
		t.Error("Expected placing into a wall to fail")
	}
	if !d.Place(d.Maze.Exit(), West) || !d.AtExit() {
		t.Error("Expected placement on the exit")
	}
}

func TestPlaceNormalizesFacing(t *testing.T) {
	d := New(ruins(t), 5, DefaultRules(), newFakeProgress(), newFakeProgress())

	if !d.Place(d.Maze.Entrance(), Facing(-1)) {
		t.Fatal("Failed to place at the entrance")
	}
	if d.Facing != West {
		t.Errorf("Expected -1 to normalize to West, got %d", d.Facing)
	}
	if got := d.Facing.String(); got != "W" {
		t.Errorf("Expected W, got %s", got)
	}
	if got := Facing(-6).String(); got != "S" {
		t.Errorf("Expected -6 to read as S, got %s", got)
	}
	if dx, dy := Facing(7).Delta(); dx != -1 || dy != 0 {
		t.Errorf("Expected 7 to step west, got %d,%d", dx, dy)
	}
}

func TestRemoveEntity(t *testing.T) {
	rules := DefaultRules()
	rules.EnemyDensity = 1
	d := New(ruins(t), 11, rules, newFakeProgress(), newFakeProgress())

	e := d.Entities()[0]
	d.Remove(e)
	if _, ok := d.EntityAt(e.Cell); ok {
		t.Error("Expected entity removed")
	}
}

func TestDungeonEncounterRate(t *testing.T) {
	d := New(ruins(t), 1, DefaultRules(), newFakeProgress(), newFakeProgress())

	if !d.CheckEncounter(dice.NewRoller(&dice.Scripted{Floats: []float64{0.05}})) {
		t.Error("Expected encounter with draw 0.05 < 0.1")
	}
	if d.CheckEncounter(dice.NewRoller(&dice.Scripted{Floats: []float64{0.1}})) {
		t.Error("Expected no encounter with draw 0.1")
	}
}
