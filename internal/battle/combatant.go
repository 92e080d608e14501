package battle

import (
	"math"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/gamedata"
)

// Buff is a temporary set of stat multipliers
type Buff struct {
	Source      string
	Multipliers map[content.Stat]float64
	Remaining   int
}

// Status is a lingering condition such as poison or sleep
type Status struct {
	Kind      content.StatusKind
	Remaining int
}

// Regen heals its bearer at the end of each of their turns
type Regen struct {
	Source    string
	Amount    content.Range
	Remaining int
}

// Combatant is one side of a battle
type Combatant struct {
	Name        string
	Sprite      string
	Level       int
	HP          int
	MaxHP       int
	MP          int
	MaxMP       int
	Attack      int
	Defense     int
	MagicAttack int
	Speed       int
	Magic       bool // attacks with the magic damage multiplier

	Buffs    []Buff
	Statuses []Status
	Regens   []Regen
}

// NewPlayer builds the player's combatant from the stored record.
func NewPlayer(p gamedata.Player) *Combatant {
	return &Combatant{
		Name:        p.Name,
		Sprite:      "player",
		Level:       p.Level,
		HP:          p.HP,
		MaxHP:       p.MaxHP,
		MP:          p.MP,
		MaxMP:       p.MaxMP,
		Attack:      10 + 3*p.Level,
		Defense:     5 + 2*p.Level,
		MagicAttack: 6 + 2*p.Level,
		Speed:       8 + p.Level,
	}
}

// NewEnemy builds an enemy combatant from rolled stats.
func NewEnemy(s content.EnemyStats) *Combatant {
	return &Combatant{
		Name:        s.Name,
		Sprite:      s.Sprite,
		Level:       s.Level,
		HP:          s.HP,
		MaxHP:       s.HP,
		Attack:      s.Attack,
		Defense:     s.Defense,
		MagicAttack: s.Attack,
		Speed:       5 + s.Level,
		Magic:       s.Magic,
	}
}

// Alive reports whether the combatant can still fight
func (c *Combatant) Alive() bool {
	return c.HP > 0
}

// Stat returns a stat with every active buff applied.
func (c *Combatant) Stat(stat content.Stat) int {
	var base int
	switch stat {
	case content.StatAttack:
		base = c.Attack
	case content.StatDefense:
		base = c.Defense
	case content.StatSpeed:
		base = c.Speed
	case content.StatMagicAttack:
		base = c.MagicAttack
	}

	mult := 1.0
	for _, b := range c.Buffs {
		if m, ok := b.Multipliers[stat]; ok {
			mult *= m
		}
	}
	return int(math.Floor(float64(base) * mult))
}

// AddBuff applies multipliers for a number of turns. Reapplying the same
// source refreshes it instead of stacking.
func (c *Combatant) AddBuff(source string, mult map[content.Stat]float64, turns int) {
	for i := range c.Buffs {
		if c.Buffs[i].Source == source {
			c.Buffs[i].Remaining = turns
			return
		}
	}
	c.Buffs = append(c.Buffs, Buff{Source: source, Multipliers: mult, Remaining: turns})
}

// AddStatus inflicts a status. Reapplying refreshes the duration.
func (c *Combatant) AddStatus(kind content.StatusKind, turns int) {
	for i := range c.Statuses {
		if c.Statuses[i].Kind == kind {
			c.Statuses[i].Remaining = turns
			return
		}
	}
	c.Statuses = append(c.Statuses, Status{Kind: kind, Remaining: turns})
}

// HasStatus reports whether the status is active
func (c *Combatant) HasStatus(kind content.StatusKind) bool {
	for _, s := range c.Statuses {
		if s.Kind == kind {
			return true
		}
	}
	return false
}

// Disabled returns the first active status that costs the bearer a turn.
func (c *Combatant) Disabled() (content.StatusKind, bool) {
	for _, s := range c.Statuses {
		if s.Kind.Disabling() {
			return s.Kind, true
		}
	}
	return "", false
}

// Cure removes the listed statuses and returns those that were active.
func (c *Combatant) Cure(kinds []content.StatusKind) []content.StatusKind {
	var cured []content.StatusKind
	kept := c.Statuses[:0]
	for _, s := range c.Statuses {
		removed := false
		for _, k := range kinds {
			if s.Kind == k {
				removed = true
				break
			}
		}
		if removed {
			cured = append(cured, s.Kind)
		} else {
			kept = append(kept, s)
		}
	}
	c.Statuses = kept
	return cured
}

// TakeDamage subtracts HP, flooring at zero
func (c *Combatant) TakeDamage(amount int) {
	c.HP = max(0, c.HP-amount)
}
