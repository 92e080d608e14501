// Package content holds the static game tables: items, spells, scroll
// locations, enemies and overworld layout. Tables are loaded once from YAML
// and never mutated afterwards.
package content

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/deepruins/internal/dice"
)

//go:embed data/*.yaml
var embedded embed.FS

var (
	// ErrUnknownItem is returned when an item id is not in the table.
	ErrUnknownItem = errors.New("unknown item")
	// ErrUnknownSpell is returned when a spell id is not in the table.
	ErrUnknownSpell = errors.New("unknown spell")
)

// Tables is the full set of static content.
type Tables struct {
	items   map[string]*Item
	spells  map[string]*Spell
	scrolls map[string]*ScrollLocation
	enemies map[string]*EnemyTemplate

	itemOrder  []string
	spellOrder []string

	Field     []Encounter
	Wanderers []Encounter
	Areas     []Area
	Treasures []Treasure
}

type itemFile struct {
	Items []Item `yaml:"items"`
}

type spellFile struct {
	Spells  []Spell          `yaml:"spells"`
	Scrolls []ScrollLocation `yaml:"scrolls"`
}

type enemyFile struct {
	Enemies   []EnemyTemplate `yaml:"enemies"`
	Field     []Encounter     `yaml:"field"`
	Wanderers []Encounter     `yaml:"wanderers"`
}

type worldFile struct {
	Areas     []Area     `yaml:"areas"`
	Treasures []Treasure `yaml:"treasures"`
}

// Default loads the tables compiled into the binary.
func Default() (*Tables, error) {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded content: %w", err)
	}
	return Load(sub)
}

// LoadDir loads tables from a directory, falling back to the embedded copy
// for any file the directory does not provide.
func LoadDir(dir string) (*Tables, error) {
	if dir == "" {
		return Default()
	}
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		return nil, fmt.Errorf("open embedded content: %w", err)
	}
	return Load(overlayFS{primary: os.DirFS(dir), fallback: sub})
}

// Load parses items.yaml, spells.yaml, enemies.yaml and world.yaml from fsys.
func Load(fsys fs.FS) (*Tables, error) {
	var (
		items   itemFile
		spells  spellFile
		enemies enemyFile
		world   worldFile
	)
	for name, target := range map[string]any{
		"items.yaml":   &items,
		"spells.yaml":  &spells,
		"enemies.yaml": &enemies,
		"world.yaml":   &world,
	} {
		if err := decodeFile(fsys, name, target); err != nil {
			return nil, err
		}
	}

	t := &Tables{
		items:     make(map[string]*Item, len(items.Items)),
		spells:    make(map[string]*Spell, len(spells.Spells)),
		scrolls:   make(map[string]*ScrollLocation, len(spells.Scrolls)),
		enemies:   make(map[string]*EnemyTemplate, len(enemies.Enemies)),
		Field:     enemies.Field,
		Wanderers: enemies.Wanderers,
		Areas:     world.Areas,
		Treasures: world.Treasures,
	}

	for i := range items.Items {
		item := &items.Items[i]
		expandAll(&item.Effect)
		t.items[item.ID] = item
		t.itemOrder = append(t.itemOrder, item.ID)
	}
	for i := range spells.Spells {
		spell := &spells.Spells[i]
		expandAll(&spell.Effect)
		t.spells[spell.ID] = spell
		t.spellOrder = append(t.spellOrder, spell.ID)
	}
	for i := range spells.Scrolls {
		t.scrolls[spells.Scrolls[i].ID] = &spells.Scrolls[i]
	}
	for i := range enemies.Enemies {
		t.enemies[enemies.Enemies[i].ID] = &enemies.Enemies[i]
	}

	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func decodeFile(fsys fs.FS, name string, target any) error {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// expandAll turns the "all stats" shorthand into explicit multipliers.
func expandAll(e *Effect) {
	if e.All == 0 {
		return
	}
	if e.Multipliers == nil {
		e.Multipliers = make(map[Stat]float64, len(AllStats))
	}
	for _, s := range AllStats {
		if _, ok := e.Multipliers[s]; !ok {
			e.Multipliers[s] = e.All
		}
	}
}

func (t *Tables) validate() error {
	for _, id := range t.spellOrder {
		s := t.spells[id]
		if s.Unlock.Scroll != "" {
			if _, ok := t.scrolls[s.Unlock.Scroll]; !ok {
				return fmt.Errorf("spell %s: unknown scroll location %s", id, s.Unlock.Scroll)
			}
		} else if s.Unlock.Level <= 0 {
			return fmt.Errorf("spell %s: level unlock must be positive", id)
		}
		if err := validateRanges(s.Effect); err != nil {
			return fmt.Errorf("spell %s: %w", id, err)
		}
	}
	for _, id := range t.itemOrder {
		if err := validateRanges(t.items[id].Effect); err != nil {
			return fmt.Errorf("item %s: %w", id, err)
		}
	}
	for id, loc := range t.scrolls {
		for _, spell := range loc.Spells {
			if _, ok := t.spells[spell]; !ok {
				return fmt.Errorf("scroll location %s: %w: %s", id, ErrUnknownSpell, spell)
			}
		}
	}
	for id, e := range t.enemies {
		if err := validateDice(e); err != nil {
			return fmt.Errorf("enemy %s: %w", id, err)
		}
	}
	for _, table := range [][]Encounter{t.Field, t.Wanderers} {
		for _, e := range table {
			if _, ok := t.enemies[e.Enemy]; !ok {
				return fmt.Errorf("encounter table: unknown enemy %s", e.Enemy)
			}
		}
	}
	for _, a := range t.Areas {
		if _, ok := t.enemies[a.Guard]; !ok {
			return fmt.Errorf("area %s: unknown guard %s", a.ID, a.Guard)
		}
		for _, loot := range a.Loot {
			if _, ok := t.items[loot]; !ok {
				return fmt.Errorf("area %s: %w: %s", a.ID, ErrUnknownItem, loot)
			}
		}
		for _, s := range a.Scrolls {
			if _, ok := t.scrolls[s]; !ok {
				return fmt.Errorf("area %s: unknown scroll location %s", a.ID, s)
			}
		}
	}
	for _, tr := range t.Treasures {
		if tr.Item != "" {
			if _, ok := t.items[tr.Item]; !ok {
				return fmt.Errorf("treasure %s: %w: %s", tr.ID, ErrUnknownItem, tr.Item)
			}
		}
		if tr.Scroll != "" {
			if _, ok := t.scrolls[tr.Scroll]; !ok {
				return fmt.Errorf("treasure %s: unknown scroll location %s", tr.ID, tr.Scroll)
			}
		}
	}
	return nil
}

func validateDice(e *EnemyTemplate) error {
	if err := dice.Validate(e.Level); err != nil {
		return fmt.Errorf("level: %w", err)
	}
	stats := []struct{ name, expr string }{
		{"hp", e.HP},
		{"attack", e.Attack},
		{"defense", e.Defense},
	}
	for _, s := range stats {
		if s.expr == "" {
			continue
		}
		if err := dice.Validate(s.expr); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func validateRanges(e Effect) error {
	for _, r := range []*Range{e.Damage, e.Healing, e.Mana} {
		if r != nil && (r.Min < 0 || r.Max < r.Min) {
			return fmt.Errorf("invalid range %d-%d", r.Min, r.Max)
		}
	}
	return nil
}

// Item returns the item definition for id.
func (t *Tables) Item(id string) (*Item, error) {
	item, ok := t.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return item, nil
}

// Spell returns the spell definition for id.
func (t *Tables) Spell(id string) (*Spell, error) {
	spell, ok := t.spells[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSpell, id)
	}
	return spell, nil
}

// Scroll returns the scroll location for id.
func (t *Tables) Scroll(id string) (*ScrollLocation, bool) {
	loc, ok := t.scrolls[id]
	return loc, ok
}

// Enemy returns the enemy template for id.
func (t *Tables) Enemy(id string) (*EnemyTemplate, bool) {
	e, ok := t.enemies[id]
	return e, ok
}

// Area returns the overworld area for id.
func (t *Tables) Area(id string) (*Area, bool) {
	for i := range t.Areas {
		if t.Areas[i].ID == id {
			return &t.Areas[i], true
		}
	}
	return nil, false
}

// Items returns every item in file order.
func (t *Tables) Items() []*Item {
	out := make([]*Item, 0, len(t.itemOrder))
	for _, id := range t.itemOrder {
		out = append(out, t.items[id])
	}
	return out
}

// LevelSpells returns the level-unlocked spells with a requirement at or
// below level, in file order.
func (t *Tables) LevelSpells(level int) []*Spell {
	var out []*Spell
	for _, id := range t.spellOrder {
		s := t.spells[id]
		if s.Unlock.ByLevel() && s.Unlock.Level <= level {
			out = append(out, s)
		}
	}
	return out
}

// SpellsAt returns the spells taught at a scroll location. Unknown locations
// yield nothing.
func (t *Tables) SpellsAt(location string) []*Spell {
	loc, ok := t.scrolls[location]
	if !ok {
		return nil
	}
	out := make([]*Spell, 0, len(loc.Spells))
	for _, id := range loc.Spells {
		out = append(out, t.spells[id])
	}
	return out
}

var itemKindOrder = map[ItemKind]int{ItemHealing: 0, ItemBuff: 1, ItemAttack: 2}

var rarityOrder = map[Rarity]int{
	RarityCommon: 0, RarityUncommon: 1, RarityRare: 2, RarityEpic: 3, RarityLegendary: 4,
}

var spellKindOrder = map[SpellKind]int{
	SpellAttack: 0, SpellHealing: 1, SpellBuff: 2, SpellDebuff: 3, SpellSpecial: 4,
}

// SortItems orders items by kind (healing, buff, attack) then rarity.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if itemKindOrder[a.Kind] != itemKindOrder[b.Kind] {
			return itemKindOrder[a.Kind] < itemKindOrder[b.Kind]
		}
		return rarityOrder[a.Rarity] < rarityOrder[b.Rarity]
	})
}

// SortSpells orders spells by kind (attack, healing, buff, debuff, special) then level.
func SortSpells(spells []*Spell) {
	sort.SliceStable(spells, func(i, j int) bool {
		a, b := spells[i], spells[j]
		if spellKindOrder[a.Kind] != spellKindOrder[b.Kind] {
			return spellKindOrder[a.Kind] < spellKindOrder[b.Kind]
		}
		return a.Unlock.Level < b.Unlock.Level
	})
}

// overlayFS reads from primary and falls back when a file is missing there.
type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if err == nil {
		return f, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return nil, err
}
