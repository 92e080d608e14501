// Package world implements overworld traversal: free movement inside the
// map bounds, area and treasure proximity, step-sampled random encounters
// and a smoothed camera.
package world

import (
	"math"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
	"chosenoffset.com/deepruins/internal/gamedata"
)

// Rules are the overworld tuning constants
type Rules struct {
	Speed          float64 // pixels per tick per axis
	Width, Height  float64 // world size
	Margin         float64 // distance from the world edge the player cannot cross
	AreaRadius     float64 // proximity for entering areas and opening chests
	EncounterEvery int     // steps between encounter samples
	EncounterRate  float64 // probability per sample
	CameraSeconds  float32 // camera smoothing duration
	ViewW, ViewH   float64 // visible screen size
}

// DefaultRules returns the standard overworld tuning
func DefaultRules() Rules {
	return Rules{
		Speed:          3,
		Width:          1600,
		Height:         1200,
		Margin:         50,
		AreaRadius:     40,
		EncounterEvery: 30,
		EncounterRate:  0.02,
		CameraSeconds:  0.5,
		ViewW:          800,
		ViewH:          600,
	}
}

// Input is the set of held directions for one tick
type Input struct {
	Up, Down, Left, Right bool
}

// Any reports whether any direction is held
func (in Input) Any() bool {
	return in.Up || in.Down || in.Left || in.Right
}

// Overworld is the traversal state for the world map
type Overworld struct {
	rules     Rules
	Pos       gamedata.Position
	Steps     int
	Camera    *Camera
	areas     []content.Area
	treasures []content.Treasure
}

// New places the player at start, clamped into bounds, with the camera
// already centred on them.
func New(rules Rules, tables *content.Tables, start gamedata.Position) *Overworld {
	o := &Overworld{
		rules:     rules,
		areas:     tables.Areas,
		treasures: tables.Treasures,
	}
	o.Pos = o.clamp(start)
	o.Camera = newCamera(rules)
	o.Camera.SnapTo(o.cameraTarget())
	return o
}

// Rules returns the tuning in use
func (o *Overworld) Rules() Rules {
	return o.rules
}

// Move applies one tick of held input. It returns true when the position changed.
func (o *Overworld) Move(in Input) bool {
	if !in.Any() {
		return false
	}

	next := o.Pos
	if in.Left {
		next.X -= o.rules.Speed
	}
	if in.Right {
		next.X += o.rules.Speed
	}
	if in.Up {
		next.Y -= o.rules.Speed
	}
	if in.Down {
		next.Y += o.rules.Speed
	}
	next = o.clamp(next)
	if next == o.Pos {
		return false
	}

	o.Pos = next
	o.Steps++
	o.Camera.Follow(o.cameraTarget())
	return true
}

func (o *Overworld) clamp(p gamedata.Position) gamedata.Position {
	p.X = math.Min(math.Max(p.X, o.rules.Margin), o.rules.Width-o.rules.Margin)
	p.Y = math.Min(math.Max(p.Y, o.rules.Margin), o.rules.Height-o.rules.Margin)
	return p
}

// cameraTarget centres the view on the player, clamped to the world.
func (o *Overworld) cameraTarget() gamedata.Position {
	x := o.Pos.X - o.rules.ViewW/2
	y := o.Pos.Y - o.rules.ViewH/2
	x = math.Min(math.Max(x, 0), math.Max(0, o.rules.Width-o.rules.ViewW))
	y = math.Min(math.Max(y, 0), math.Max(0, o.rules.Height-o.rules.ViewH))
	return gamedata.Position{X: x, Y: y}
}

// Update advances the camera smoothing
func (o *Overworld) Update(dt float64) {
	o.Camera.Update(dt)
}

// Areas returns the enterable areas
func (o *Overworld) Areas() []content.Area {
	return o.areas
}

// Treasures returns the overworld chests
func (o *Overworld) Treasures() []content.Treasure {
	return o.treasures
}

// NearbyArea returns the first area strictly within the proximity radius.
func (o *Overworld) NearbyArea() (*content.Area, bool) {
	for i := range o.areas {
		a := &o.areas[i]
		if o.distance(a.X, a.Y) < o.rules.AreaRadius {
			return a, true
		}
	}
	return nil, false
}

// NearbyTreasure returns an uncollected chest within the proximity radius.
func (o *Overworld) NearbyTreasure(collected func(id string) bool) (*content.Treasure, bool) {
	for i := range o.treasures {
		tr := &o.treasures[i]
		if collected(tr.ID) {
			continue
		}
		if o.distance(tr.X, tr.Y) < o.rules.AreaRadius {
			return tr, true
		}
	}
	return nil, false
}

func (o *Overworld) distance(x, y float64) float64 {
	return math.Hypot(o.Pos.X-x, o.Pos.Y-y)
}

// CheckEncounter samples a random encounter. Sampling only happens on step
// counts that are a multiple of EncounterEvery.
func (o *Overworld) CheckEncounter(roller *dice.Roller) bool {
	if o.Steps == 0 || o.rules.EncounterEvery <= 0 || o.Steps%o.rules.EncounterEvery != 0 {
		return false
	}
	return roller.Chance(o.rules.EncounterRate)
}

// PickEncounter chooses an enemy from a weighted table and rolls its stats.
// Overworld enemies get a level bonus of 0 or 1.
func PickEncounter(roller *dice.Roller, tables *content.Tables, table []content.Encounter) (content.EnemyStats, bool) {
	weights := make([]int, len(table))
	for i, e := range table {
		weights[i] = e.Weight
	}
	idx := roller.Weighted(weights)
	if idx < 0 {
		return content.EnemyStats{}, false
	}
	tpl, ok := tables.Enemy(table[idx].Enemy)
	if !ok {
		return content.EnemyStats{}, false
	}
	return content.RollEnemy(roller, tpl, roller.Intn(2)), true
}

// Camera follows a target with eased motion
type Camera struct {
	seconds float32
	X, Y    float64
	tx, ty  *gween.Tween
}

func newCamera(rules Rules) *Camera {
	return &Camera{seconds: rules.CameraSeconds}
}

// SnapTo moves the camera immediately
func (c *Camera) SnapTo(p gamedata.Position) {
	c.X, c.Y = p.X, p.Y
	c.tx, c.ty = nil, nil
}

// Follow starts an eased move from the current position to p
func (c *Camera) Follow(p gamedata.Position) {
	if c.seconds <= 0 {
		c.SnapTo(p)
		return
	}
	c.tx = gween.New(float32(c.X), float32(p.X), c.seconds, ease.OutQuad)
	c.ty = gween.New(float32(c.Y), float32(p.Y), c.seconds, ease.OutQuad)
}

// Update advances the camera by dt seconds
func (c *Camera) Update(dt float64) {
	if c.tx == nil {
		return
	}
	x, doneX := c.tx.Update(float32(dt))
	y, doneY := c.ty.Update(float32(dt))
	c.X, c.Y = float64(x), float64(y)
	if doneX && doneY {
		c.tx, c.ty = nil, nil
	}
}
