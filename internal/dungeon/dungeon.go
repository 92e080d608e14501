package dungeon

import (
	"fmt"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
)

// Rules are the dungeon tuning constants
type Rules struct {
	Width, Height   int
	EnemyDensity    float64 // share of passages holding a guard
	TreasureDensity float64 // share of passages holding a chest
	EncounterRate   float64 // random encounter chance per completed step
}

// DefaultRules returns the standard dungeon tuning
func DefaultRules() Rules {
	return Rules{
		Width:           21,
		Height:          21,
		EnemyDensity:    0.1,
		TreasureDensity: 0.05,
		EncounterRate:   0.1,
	}
}

// Facing is a cardinal direction
type Facing int

const (
	North Facing = iota
	East
	South
	West
)

// Normalize folds any integer into North..West, negatives included.
func (f Facing) Normalize() Facing {
	return ((f % 4) + 4) % 4
}

// Delta returns the grid step for the facing
func (f Facing) Delta() (dx, dy int) {
	switch f.Normalize() {
	case North:
		return 0, -1
	case East:
		return 1, 0
	case South:
		return 0, 1
	default:
		return -1, 0
	}
}

// Left returns the facing after a 90° turn to the left
func (f Facing) Left() Facing {
	return (f.Normalize() + 3) % 4
}

// Right returns the facing after a 90° turn to the right
func (f Facing) Right() Facing {
	return (f.Normalize() + 1) % 4
}

func (f Facing) String() string {
	return [...]string{"N", "E", "S", "W"}[f.Normalize()]
}

// EntityKind is what occupies a cell
type EntityKind int

const (
	EntityEnemy EntityKind = iota
	EntityTreasure
	EntityScroll
)

// Entity is something placed in the maze
type Entity struct {
	ID     string
	Kind   EntityKind
	Cell   Cell
	Enemy  string // template id for guards
	Item   string // item id for chests
	Scroll string // scroll location id
}

// Progress answers which persistent entities are already gone.
type Progress interface {
	IsDefeated(id string) bool
	IsCollected(id string) bool
}

// ScrollBook reports which scroll locations have been read.
type ScrollBook interface {
	HasScroll(location string) bool
}

// Dungeon is one generated maze with the player inside it
type Dungeon struct {
	Area     *content.Area
	Maze     *Maze
	Pos      Cell
	Facing   Facing
	rules    Rules
	entities map[Cell]*Entity
}

// EntityID is the stable identity of whatever was placed at a cell.
func EntityID(area string, c Cell) string {
	return fmt.Sprintf("%s_%d_%d", area, c.X, c.Y)
}

// New builds the dungeon for an area from a seed. The same seed always
// produces the same maze and placements; entities the progress record marks
// as defeated or collected are left out. The scroll cell holds the first
// location not yet read, so it disappears once every scroll is learned.
func New(area *content.Area, seed int64, rules Rules, progress Progress, scrolls ScrollBook) *Dungeon {
	roller := dice.NewSeededRoller(seed)
	maze := Generate(rules.Width, rules.Height, roller)

	d := &Dungeon{
		Area:     area,
		Maze:     maze,
		Pos:      maze.Entrance(),
		Facing:   East,
		rules:    rules,
		entities: make(map[Cell]*Entity),
	}

	placed := d.place(roller)
	for _, e := range placed {
		switch e.Kind {
		case EntityEnemy:
			if progress.IsDefeated(e.ID) {
				continue
			}
		case EntityTreasure:
			if progress.IsCollected(e.ID) {
				continue
			}
		case EntityScroll:
			e.Scroll = firstUnread(area.Scrolls, scrolls)
			if e.Scroll == "" {
				continue
			}
		}
		d.entities[e.Cell] = e
	}
	return d
}

// place rolls every entity independently of progress so ids and positions
// are identical on every rebuild.
func (d *Dungeon) place(roller *dice.Roller) []*Entity {
	entrance, exit := d.Maze.Entrance(), d.Maze.Exit()
	reserved := map[Cell]bool{entrance: true, exit: true, {1, 1}: true}

	var placed []*Entity
	var free []Cell
	for _, c := range d.Maze.Passages() {
		if reserved[c] {
			continue
		}
		id := EntityID(d.Area.ID, c)
		switch {
		case roller.Chance(d.rules.EnemyDensity):
			placed = append(placed, &Entity{ID: id, Kind: EntityEnemy, Cell: c, Enemy: d.Area.Guard})
		case roller.Chance(d.rules.TreasureDensity) && len(d.Area.Loot) > 0:
			item := d.Area.Loot[roller.Intn(len(d.Area.Loot))]
			placed = append(placed, &Entity{ID: id, Kind: EntityTreasure, Cell: c, Item: item})
		default:
			free = append(free, c)
		}
	}

	if len(free) > 0 && len(d.Area.Scrolls) > 0 {
		c := free[roller.Intn(len(free))]
		placed = append(placed, &Entity{ID: EntityID(d.Area.ID, c), Kind: EntityScroll, Cell: c})
	}
	return placed
}

func firstUnread(locations []string, book ScrollBook) string {
	for _, loc := range locations {
		if !book.HasScroll(loc) {
			return loc
		}
	}
	return ""
}

// Place puts the player at a saved cell and facing when it is a passage.
func (d *Dungeon) Place(c Cell, f Facing) bool {
	if d.Maze.IsWall(c.X, c.Y) {
		return false
	}
	d.Pos = c
	d.Facing = f.Normalize()
	return true
}

// Entities returns every entity still in the maze
func (d *Dungeon) Entities() []*Entity {
	out := make([]*Entity, 0, len(d.entities))
	for _, e := range d.entities {
		out = append(out, e)
	}
	return out
}

// EntityAt returns the entity on a cell
func (d *Dungeon) EntityAt(c Cell) (*Entity, bool) {
	e, ok := d.entities[c]
	return e, ok
}

// Remove takes an entity out of the maze
func (d *Dungeon) Remove(e *Entity) {
	delete(d.entities, e.Cell)
}

// TurnLeft rotates the player 90° counter-clockwise
func (d *Dungeon) TurnLeft() {
	d.Facing = d.Facing.Left()
}

// TurnRight rotates the player 90° clockwise
func (d *Dungeon) TurnRight() {
	d.Facing = d.Facing.Right()
}

// Ahead returns the cell n steps in front of the player
func (d *Dungeon) Ahead(n int) Cell {
	dx, dy := d.Facing.Delta()
	return Cell{d.Pos.X + dx*n, d.Pos.Y + dy*n}
}

// CanMoveTo reports whether the cell is inside the grid and open
func (d *Dungeon) CanMoveTo(c Cell) bool {
	return !d.Maze.IsWall(c.X, c.Y)
}

// Forward steps one cell in the facing direction. It returns false when a
// wall blocks the way.
func (d *Dungeon) Forward() bool {
	return d.step(1)
}

// Back steps one cell away from the facing direction without turning.
func (d *Dungeon) Back() bool {
	return d.step(-1)
}

func (d *Dungeon) step(n int) bool {
	target := d.Ahead(n)
	if !d.CanMoveTo(target) {
		return false
	}
	d.Pos = target
	return true
}

// AtExit reports whether the player stands on the exit cell
func (d *Dungeon) AtExit() bool {
	return d.Pos == d.Maze.Exit()
}

// CheckEncounter samples a random encounter after a completed step.
func (d *Dungeon) CheckEncounter(roller *dice.Roller) bool {
	return roller.Chance(d.rules.EncounterRate)
}
