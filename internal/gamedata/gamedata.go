// Package gamedata holds the single cross-scene record: player stats and
// position, world progress, flags, defeated enemies and the inventory.
// Scenes receive it explicitly and mutate it through Record's methods.
package gamedata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/inventory"
	"chosenoffset.com/deepruins/internal/storage"
)

// Position is a point on the overworld map
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DungeonPosition is the player's cell and facing inside a dungeon
type DungeonPosition struct {
	Area   string `json:"area"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Facing int    `json:"facing"`
}

// Player is the persisted player record
type Player struct {
	Name     string          `json:"name"`
	Level    int             `json:"level"`
	HP       int             `json:"hp"`
	MaxHP    int             `json:"maxHp"`
	MP       int             `json:"mp"`
	MaxMP    int             `json:"maxMp"`
	Exp      int             `json:"exp"`
	Money    int             `json:"money"`
	Position Position        `json:"position"`
	Dungeon  DungeonPosition `json:"dungeonPosition"`
}

// World tracks where the player is and where they have been
type World struct {
	CurrentArea  string           `json:"currentArea"`
	VisitedAreas []string         `json:"visitedAreas"`
	DungeonSeeds map[string]int64 `json:"dungeonSeeds"`
}

// Data is the serialized form of the whole record
type Data struct {
	Player          Player             `json:"player"`
	World           World              `json:"world"`
	Inventory       inventory.SaveData `json:"inventory"`
	Flags           map[string]bool    `json:"flags"`
	DefeatedEnemies []string           `json:"defeatedEnemies"`
	Collected       []string           `json:"collected"`
}

// Default returns the data of a fresh game
func Default() Data {
	return Data{
		Player: Player{
			Name:     "Hero",
			Level:    1,
			HP:       50,
			MaxHP:    50,
			MP:       20,
			MaxMP:    20,
			Money:    100,
			Position: Position{X: 400, Y: 300},
		},
		World: World{
			CurrentArea:  "overworld",
			DungeonSeeds: map[string]int64{},
		},
		Inventory: inventory.SaveData{Items: map[string]int{}, MaxSlots: inventory.DefaultMaxSlots},
		Flags: map[string]bool{
			"firstTime":        true,
			"tutorialComplete": false,
		},
	}
}

// Record is the mutex-guarded, shared game data
type Record struct {
	mu        sync.RWMutex
	player    Player
	world     World
	flags     map[string]bool
	defeated  map[string]bool
	collected map[string]bool

	inv *inventory.Inventory
}

// New creates a record holding default data
func New(tables *content.Tables) *Record {
	r := &Record{inv: inventory.New(tables)}
	r.apply(Default())
	return r
}

func (r *Record) apply(d Data) {
	r.mu.Lock()
	r.player = d.Player
	r.world = d.World
	if r.world.DungeonSeeds == nil {
		r.world.DungeonSeeds = map[string]int64{}
	}
	r.flags = make(map[string]bool, len(d.Flags))
	for k, v := range d.Flags {
		r.flags[k] = v
	}
	r.defeated = toSet(d.DefeatedEnemies)
	r.collected = toSet(d.Collected)
	r.mu.Unlock()

	r.inv.Restore(d.Inventory)
}

// Reset returns every field to its new-game value
func (r *Record) Reset() {
	r.apply(Default())
}

// Snapshot returns a deep copy of the current data
func (r *Record) Snapshot() Data {
	r.mu.RLock()
	d := Data{
		Player:          r.player,
		World:           r.world,
		Flags:           make(map[string]bool, len(r.flags)),
		DefeatedEnemies: fromSet(r.defeated),
		Collected:       fromSet(r.collected),
	}
	d.World.VisitedAreas = append([]string(nil), r.world.VisitedAreas...)
	d.World.DungeonSeeds = make(map[string]int64, len(r.world.DungeonSeeds))
	for k, v := range r.world.DungeonSeeds {
		d.World.DungeonSeeds[k] = v
	}
	for k, v := range r.flags {
		d.Flags[k] = v
	}
	r.mu.RUnlock()

	d.Inventory = r.inv.Snapshot()
	return d
}

// Encode serializes the record
func (r *Record) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize game data: %w", err)
	}
	return data, nil
}

// Decode replaces the record with a saved blob merged over the defaults, so
// fields absent from an older save keep their new-game values.
func (r *Record) Decode(blob []byte) error {
	d := Default()
	if err := json.Unmarshal(blob, &d); err != nil {
		return fmt.Errorf("failed to parse game data: %w", err)
	}
	if d.Player.Level < 1 {
		d.Player.Level = 1
	}
	r.apply(d)
	return nil
}

// Save writes the record to a store slot
func (r *Record) Save(ctx context.Context, store storage.Store, slot string) error {
	data, err := r.Encode()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, slot, data); err != nil {
		return fmt.Errorf("failed to save game data: %w", err)
	}
	return nil
}

// Load reads a store slot into the record. A missing slot returns an error
// wrapping storage.ErrNotFound and leaves the record untouched.
func (r *Record) Load(ctx context.Context, store storage.Store, slot string) error {
	blob, err := store.Load(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to load game data: %w", err)
	}
	return r.Decode(blob)
}

// LoadExisting is Load for startup: a missing slot is not an error and
// reports false with the record left at its defaults.
func (r *Record) LoadExisting(ctx context.Context, store storage.Store, slot string) (bool, error) {
	err := r.Load(ctx, store, slot)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// --- Player ---

// Player returns a copy of the player record
func (r *Record) Player() Player {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.player
}

// UpdatePlayer mutates the player record under the lock
func (r *Record) UpdatePlayer(fn func(p *Player)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(&r.player)
}

// Inventory returns the player's inventory
func (r *Record) Inventory() *inventory.Inventory {
	return r.inv
}

// --- World ---

// World returns a copy of the world progress
func (r *Record) World() World {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w := r.world
	w.VisitedAreas = append([]string(nil), r.world.VisitedAreas...)
	return w
}

// EnterArea records the current area and marks it visited
func (r *Record) EnterArea(area string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world.CurrentArea = area
	for _, a := range r.world.VisitedAreas {
		if a == area {
			return
		}
	}
	r.world.VisitedAreas = append(r.world.VisitedAreas, area)
}

// DungeonSeed returns the maze seed stored for an area
func (r *Record) DungeonSeed(area string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seed, ok := r.world.DungeonSeeds[area]
	return seed, ok
}

// SetDungeonSeed stores the maze seed for an area
func (r *Record) SetDungeonSeed(area string, seed int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.world.DungeonSeeds[area] = seed
}

// --- Flags and progress sets ---

// Flag returns the value of a flag (false if not set)
func (r *Record) Flag(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.flags[name]
}

// SetFlag sets a flag to a specific value
func (r *Record) SetFlag(name string, value bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flags[name] = value
}

// RecordDefeated marks an enemy id as permanently defeated
func (r *Record) RecordDefeated(id string) {
	if id == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defeated[id] = true
}

// IsDefeated reports whether an enemy id has been defeated
func (r *Record) IsDefeated(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defeated[id]
}

// ClearDefeated forgets every defeated enemy so dungeons repopulate
func (r *Record) ClearDefeated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defeated = make(map[string]bool)
}

// MarkCollected marks a treasure id as taken
func (r *Record) MarkCollected(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.collected[id] = true
}

// IsCollected reports whether a treasure id has been taken
func (r *Record) IsCollected(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.collected[id]
}

// Debug returns a string representation of the record for debugging
func (r *Record) Debug() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return fmt.Sprintf("Record{Lv%d HP %d/%d MP %d/%d, area %s, defeated %d, %s}",
		r.player.Level, r.player.HP, r.player.MaxHP, r.player.MP, r.player.MaxMP,
		r.world.CurrentArea, len(r.defeated), r.inv.Debug())
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func fromSet(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
