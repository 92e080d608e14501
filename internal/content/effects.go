package content

import (
	"math"

	"chosenoffset.com/deepruins/internal/dice"
)

const (
	spellMagicBonus = 0.2
	itemMagicBonus  = 0.1
)

// Restore adds amount to current without exceeding max. It returns the new
// value and the amount actually restored, which is never more than the
// missing amount.
func Restore(current, max, amount int) (next, restored int) {
	if amount <= 0 || current >= max {
		return current, 0
	}
	missing := max - current
	if amount > missing {
		amount = missing
	}
	return current + amount, amount
}

// CanCast reports whether mp covers the spell's cost.
func CanCast(mp int, s *Spell) bool {
	return mp >= s.MPCost
}

// ConsumeMana returns mp after paying the spell's cost, floored at zero.
func ConsumeMana(mp int, s *Spell) int {
	return max(0, mp-s.MPCost)
}

// RollRange draws a value from r, or 0 when r is nil.
func RollRange(roller *dice.Roller, r *Range) int {
	if r == nil {
		return 0
	}
	return roller.Range(r.Min, r.Max)
}

// SpellDamage rolls the spell's damage and adds a fifth of magicAttack.
func SpellDamage(roller *dice.Roller, s *Spell, magicAttack int) int {
	if s.Effect.Damage == nil {
		return 0
	}
	return RollRange(roller, s.Effect.Damage) + int(math.Floor(float64(magicAttack)*spellMagicBonus))
}

// ItemDamage rolls the item's damage and adds a tenth of magicAttack.
func ItemDamage(roller *dice.Roller, it *Item, magicAttack int) int {
	if it.Effect.Damage == nil {
		return 0
	}
	return RollRange(roller, it.Effect.Damage) + int(math.Floor(float64(magicAttack)*itemMagicBonus))
}

// HPAfterReduce returns hp after losing the given fraction, never below 1.
func HPAfterReduce(hp int, fraction float64) int {
	if fraction <= 0 {
		return hp
	}
	next := hp - int(math.Floor(float64(hp)*fraction))
	return max(1, next)
}

// EnemyStats is a rolled enemy ready to become a combatant.
type EnemyStats struct {
	TemplateID string
	Name       string
	Sprite     string
	Level      int
	HP         int
	Attack     int
	Defense    int
	Magic      bool
}

// RollEnemy rolls concrete stats for a template. levelBonus is added to the
// rolled level before level-derived stats are computed.
func RollEnemy(roller *dice.Roller, tpl *EnemyTemplate, levelBonus int) EnemyStats {
	level := max(1, roller.MustRoll(tpl.Level)+levelBonus)
	stats := EnemyStats{
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		Sprite:     tpl.Sprite,
		Level:      level,
		HP:         30 + 15*level,
		Attack:     8 + 2*level,
		Defense:    3 + level,
		Magic:      tpl.Magic,
	}
	if tpl.HP != "" {
		stats.HP = max(1, roller.MustRoll(tpl.HP))
	}
	if tpl.Attack != "" {
		stats.Attack = max(0, roller.MustRoll(tpl.Attack))
	}
	if tpl.Defense != "" {
		stats.Defense = max(0, roller.MustRoll(tpl.Defense))
	}
	return stats
}
