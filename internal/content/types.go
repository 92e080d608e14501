package content

import "image/color"

// Target selects who an item or spell affects.
type Target string

const (
	TargetSelf   Target = "self"
	TargetSingle Target = "single"
	TargetAll    Target = "all"
)

// ItemKind groups items for sorting and dispatch.
type ItemKind string

const (
	ItemHealing ItemKind = "healing"
	ItemBuff    ItemKind = "buff"
	ItemAttack  ItemKind = "attack"
)

// SpellKind groups spells for sorting and dispatch.
type SpellKind string

const (
	SpellAttack  SpellKind = "attack"
	SpellHealing SpellKind = "healing"
	SpellBuff    SpellKind = "buff"
	SpellDebuff  SpellKind = "debuff"
	SpellSpecial SpellKind = "special"
)

// Stat names a combat stat that multipliers can scale.
type Stat string

const (
	StatAttack      Stat = "attack"
	StatDefense     Stat = "defense"
	StatSpeed       Stat = "speed"
	StatMagicAttack Stat = "magicAttack"
)

// AllStats lists every stat an "all" multiplier expands to.
var AllStats = []Stat{StatAttack, StatDefense, StatSpeed, StatMagicAttack}

// StatusKind is a lingering battle condition.
type StatusKind string

const (
	StatusPoison    StatusKind = "poison"
	StatusFreeze    StatusKind = "freeze"
	StatusSleep     StatusKind = "sleep"
	StatusParalysis StatusKind = "paralysis"
)

// Disabling reports whether the status makes its bearer lose turns.
func (s StatusKind) Disabling() bool {
	return s == StatusFreeze || s == StatusSleep || s == StatusParalysis
}

// Rarity is the item rarity tier.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

var rarityColors = map[Rarity]color.RGBA{
	RarityCommon:    {0xff, 0xff, 0xff, 0xff},
	RarityUncommon:  {0x00, 0xff, 0x00, 0xff},
	RarityRare:      {0x00, 0x80, 0xff, 0xff},
	RarityEpic:      {0x80, 0x00, 0xff, 0xff},
	RarityLegendary: {0xff, 0x80, 0x00, 0xff},
}

// Color returns the display color for the rarity tier.
func (r Rarity) Color() color.RGBA {
	if c, ok := rarityColors[r]; ok {
		return c
	}
	return rarityColors[RarityCommon]
}

// Range is an inclusive integer range.
type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Effect describes everything an item or spell does. Several parts may be
// present at once (a damage roll that also applies a status, a heal that
// also restores mana).
type Effect struct {
	HP             int              `yaml:"hp,omitempty"`             // flat HP restore
	MP             int              `yaml:"mp,omitempty"`             // flat MP restore
	Damage         *Range           `yaml:"damage,omitempty"`         // raw damage roll
	Healing        *Range           `yaml:"healing,omitempty"`        // HP restore roll (per turn when Duration > 0)
	Mana           *Range           `yaml:"mana,omitempty"`           // MP restore roll
	Multipliers    map[Stat]float64 `yaml:"multipliers,omitempty"`    // stat multipliers for Duration turns
	All            float64          `yaml:"all,omitempty"`            // shorthand multiplier for every stat
	HPReduce       float64          `yaml:"hpReduce,omitempty"`       // fraction of current HP lost on use
	Duration       int              `yaml:"duration,omitempty"`       // turns for buffs and regeneration
	Element        string           `yaml:"element,omitempty"`        // flavor only
	Status         StatusKind       `yaml:"status,omitempty"`         // status inflicted on the target
	StatusDuration int              `yaml:"statusDuration,omitempty"` // turns the status lasts
	Cures          []StatusKind     `yaml:"cures,omitempty"`          // statuses removed
	Escape         bool             `yaml:"escape,omitempty"`         // ends the battle as an escape
}

// Regenerates reports whether the healing roll repeats every turn.
func (e Effect) Regenerates() bool {
	return e.Healing != nil && e.Duration > 0
}

// HasMultipliers reports whether the effect scales stats.
func (e Effect) HasMultipliers() bool {
	return len(e.Multipliers) > 0
}

// Item is one consumable definition.
type Item struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Kind        ItemKind `yaml:"kind"`
	Description string   `yaml:"description"`
	Price       int      `yaml:"price"`
	Rarity      Rarity   `yaml:"rarity"`
	Icon        string   `yaml:"icon"`
	Target      Target   `yaml:"target"`
	Effect      Effect   `yaml:"effect"`
}

// Unlock describes how a spell is learned. A spell with a scroll location is
// only learned there; otherwise it is learned on reaching Level.
type Unlock struct {
	Level  int    `yaml:"level"`
	Scroll string `yaml:"scroll,omitempty"`
}

// ByLevel reports whether the spell is learned through leveling.
func (u Unlock) ByLevel() bool {
	return u.Scroll == ""
}

// Spell is one castable definition.
type Spell struct {
	ID          string    `yaml:"id"`
	Name        string    `yaml:"name"`
	Kind        SpellKind `yaml:"kind"`
	Element     string    `yaml:"element,omitempty"`
	MPCost      int       `yaml:"mpCost"`
	Target      Target    `yaml:"target"`
	Description string    `yaml:"description"`
	Effect      Effect    `yaml:"effect"`
	Unlock      Unlock    `yaml:"unlock"`
}

// ScrollLocation is a place where reading a scroll teaches spells.
type ScrollLocation struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Spells      []string `yaml:"spells"`
}

// EnemyTemplate describes how to roll an enemy. Stats are dice expressions;
// empty stats fall back to the level formula.
type EnemyTemplate struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name"`
	Sprite  string `yaml:"sprite"`
	Level   string `yaml:"level"`
	HP      string `yaml:"hp,omitempty"`
	Attack  string `yaml:"attack,omitempty"`
	Defense string `yaml:"defense,omitempty"`
	Magic   bool   `yaml:"magic,omitempty"`
}

// Encounter is one weighted entry of an encounter table.
type Encounter struct {
	Enemy  string `yaml:"enemy"`
	Weight int    `yaml:"weight"`
}

// Area is an enterable overworld location leading to a dungeon.
type Area struct {
	ID         string   `yaml:"id"`
	Name       string   `yaml:"name"`
	X          float64  `yaml:"x"`
	Y          float64  `yaml:"y"`
	Difficulty int      `yaml:"difficulty"`
	Icon       string   `yaml:"icon"`
	Guard      string   `yaml:"guard"`
	Scrolls    []string `yaml:"scrolls"`
	Loot       []string `yaml:"loot"`
}

// Treasure is an overworld chest holding items or a scroll.
type Treasure struct {
	ID     string  `yaml:"id"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Item   string  `yaml:"item,omitempty"`
	Qty    int     `yaml:"qty,omitempty"`
	Scroll string  `yaml:"scroll,omitempty"`
}
