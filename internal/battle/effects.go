package battle

import (
	"fmt"
	"strings"

	"chosenoffset.com/deepruins/internal/content"
)

const (
	msgNoMP   = "MP insufficient!"
	msgNoItem = "You don't have that item!"
)

func (b *Battle) target(t content.Target) (*Combatant, Side) {
	if t == content.TargetSelf {
		return b.Player, SidePlayer
	}
	return b.Enemy, SideEnemy
}

func (b *Battle) castSpell(spell *content.Spell) Step {
	if !content.CanCast(b.Player.MP, spell) {
		return Step{Log: []string{msgNoMP}, Rejected: true}
	}
	b.Player.MP = content.ConsumeMana(b.Player.MP, spell)

	step := Step{Log: []string{fmt.Sprintf("%s casts %s!", b.Player.Name, spell.Name)}}
	step.Events = append(step.Events, Event{Kind: EventAttack, Side: SidePlayer})

	tgt, side := b.target(spell.Target)
	e := spell.Effect

	if e.Damage != nil {
		dmg := content.SpellDamage(b.roller, spell, b.Player.Stat(content.StatMagicAttack))
		b.applyDamage(tgt, side, dmg, &step)
	}
	b.applyRestoration(spell.Name, e, &step)
	b.applyCommon(spell.Name, e, tgt, side, &step)

	if e.Escape {
		b.state = StateEscaped
		step.Log = append(step.Log, fmt.Sprintf("%s vanished from the battle!", b.Player.Name))
	}
	return step
}

func (b *Battle) useItem(item *content.Item) Step {
	if !b.inv.UseItem(item.ID, 1) {
		return Step{Log: []string{msgNoItem}, Rejected: true}
	}

	step := Step{Log: []string{fmt.Sprintf("%s uses %s!", b.Player.Name, item.Name)}}
	tgt, side := b.target(item.Target)
	e := item.Effect

	if e.Damage != nil {
		dmg := content.ItemDamage(b.roller, item, b.Player.Stat(content.StatMagicAttack))
		b.applyDamage(tgt, side, dmg, &step)
	}
	if e.HP > 0 {
		next, healed := content.Restore(b.Player.HP, b.Player.MaxHP, e.HP)
		b.Player.HP = next
		step.Log = append(step.Log, fmt.Sprintf("Recovered %d HP!", healed))
		step.Events = append(step.Events, Event{Kind: EventHeal, Side: SidePlayer, Amount: healed})
	}
	if e.MP > 0 {
		next, restored := content.Restore(b.Player.MP, b.Player.MaxMP, e.MP)
		b.Player.MP = next
		step.Log = append(step.Log, fmt.Sprintf("Recovered %d MP!", restored))
		step.Events = append(step.Events, Event{Kind: EventMana, Side: SidePlayer, Amount: restored})
	}
	if e.HPReduce > 0 {
		before := b.Player.HP
		b.Player.HP = content.HPAfterReduce(b.Player.HP, e.HPReduce)
		step.Log = append(step.Log, fmt.Sprintf("%s loses %d HP to the item's power!", b.Player.Name, before-b.Player.HP))
	}
	b.applyCommon(item.Name, e, tgt, side, &step)
	return step
}

func (b *Battle) applyDamage(tgt *Combatant, side Side, dmg int, step *Step) {
	tgt.TakeDamage(dmg)
	step.Log = append(step.Log, fmt.Sprintf("%s takes %d damage.", tgt.Name, dmg))
	step.Events = append(step.Events, Event{Kind: EventDamage, Side: side, Amount: dmg})
}

// applyRestoration handles rolled healing, regeneration and mana restore.
// These always affect the caster.
func (b *Battle) applyRestoration(source string, e content.Effect, step *Step) {
	p := b.Player
	switch {
	case e.Regenerates():
		p.Regens = append(p.Regens, Regen{Source: source, Amount: *e.Healing, Remaining: e.Duration})
		step.Log = append(step.Log, fmt.Sprintf("%s is surrounded by a healing light.", p.Name))
	case e.Healing != nil:
		next, healed := content.Restore(p.HP, p.MaxHP, content.RollRange(b.roller, e.Healing))
		p.HP = next
		step.Log = append(step.Log, fmt.Sprintf("Recovered %d HP!", healed))
		step.Events = append(step.Events, Event{Kind: EventHeal, Side: SidePlayer, Amount: healed})
	}
	if e.Mana != nil {
		next, restored := content.Restore(p.MP, p.MaxMP, content.RollRange(b.roller, e.Mana))
		p.MP = next
		step.Log = append(step.Log, fmt.Sprintf("Recovered %d MP!", restored))
		step.Events = append(step.Events, Event{Kind: EventMana, Side: SidePlayer, Amount: restored})
	}
}

// applyCommon handles multipliers, statuses and cures shared by items and spells.
func (b *Battle) applyCommon(source string, e content.Effect, tgt *Combatant, side Side, step *Step) {
	if e.HasMultipliers() && e.Duration > 0 {
		tgt.AddBuff(source, e.Multipliers, e.Duration)
		step.Log = append(step.Log, fmt.Sprintf("%s's %s for %d turns.", tgt.Name, describeMultipliers(e.Multipliers), e.Duration))
		step.Events = append(step.Events, Event{Kind: EventBuff, Side: side})
	}

	if e.Status != "" && tgt.Alive() {
		turns := e.StatusDuration
		if turns <= 0 {
			turns = 1
		}
		tgt.AddStatus(e.Status, turns)
		step.Log = append(step.Log, fmt.Sprintf("%s is %s!", tgt.Name, statusAdjective(e.Status)))
		step.Events = append(step.Events, Event{Kind: EventStatus, Side: side})
	}

	if len(e.Cures) > 0 {
		cured := b.Player.Cure(e.Cures)
		if len(cured) == 0 {
			step.Log = append(step.Log, "Nothing to cure.")
		}
		for _, k := range cured {
			step.Log = append(step.Log, fmt.Sprintf("%s is no longer %s.", b.Player.Name, statusAdjective(k)))
		}
	}
}

func describeMultipliers(mult map[content.Stat]float64) string {
	var parts []string
	for _, s := range content.AllStats {
		m, ok := mult[s]
		if !ok {
			continue
		}
		dir := "rose"
		if m < 1 {
			dir = "fell"
		}
		parts = append(parts, fmt.Sprintf("%s %s", s, dir))
	}
	return strings.Join(parts, ", ")
}
