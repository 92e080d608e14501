// Package battle resolves one turn-based fight between the player and a
// single enemy. The resolver is a pure state machine: it never sleeps or
// animates. The battle scene drives it, plays animations for each Step and
// only submits input while the resolver is in StateSelectAction.
package battle

import (
	"errors"
	"fmt"
	"math"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/dice"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/inventory"
)

var (
	// ErrNotAcceptingInput is returned when an action is submitted outside StateSelectAction.
	ErrNotAcceptingInput = errors.New("battle is not accepting input")
	// ErrUnknownAction is returned for an action that names an unknown or unlearned spell or item.
	ErrUnknownAction = errors.New("unknown battle action")
)

// State is the resolver's position in the turn cycle
type State int

const (
	StateStart State = iota
	StateSelectAction
	StatePlayerAttack
	StatePlayerMagic
	StatePlayerItem
	StatePlayerEscape
	StateEnemyTurn
	StateVictory
	StateDefeat
	StateEscaped
)

var stateNames = [...]string{
	"Start", "SelectAction", "PlayerAttack", "PlayerMagic", "PlayerItem",
	"PlayerEscape", "EnemyTurn", "Victory", "Defeat", "Escaped",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether the battle is over
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat || s == StateEscaped
}

// ActionKind is what the player chose to do
type ActionKind int

const (
	ActionAttack ActionKind = iota
	ActionMagic
	ActionItem
	ActionEscape
)

// Action is a submitted player choice. ID names the spell or item.
type Action struct {
	Kind ActionKind
	ID   string
}

// Side identifies a combatant in events
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// EventKind classifies what happened for the scene's animations
type EventKind int

const (
	EventAttack EventKind = iota // Actor lunges
	EventDamage                  // Target lost Amount HP
	EventHeal                    // Target gained Amount HP
	EventMana                    // Target gained Amount MP
	EventBuff
	EventStatus
)

// Event is one animatable outcome
type Event struct {
	Kind   EventKind
	Side   Side
	Amount int
}

// Step is the result of advancing the resolver once.
type Step struct {
	Log      []string
	Events   []Event
	Rejected bool  // the action was refused and nothing was consumed
	State    State // state after the step
}

// Outcome is how a finished battle ended
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeEscaped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeEscaped:
		return "escaped"
	default:
		return "none"
	}
}

// Result is the payload handed back to the scene that started the battle.
type Result struct {
	Outcome   Outcome
	EnemyID   string
	ExpGained int
	LeveledUp bool
	NewLevel  int
	Learned   []string
}

// Battle is the resolver for a single fight
type Battle struct {
	Player  *Combatant
	Enemy   *Combatant
	EnemyID string

	state    State
	inv      *inventory.Inventory
	tables   *content.Tables
	roller   *dice.Roller
	menu     *Menu
	finished bool
	result   Result
}

// New creates a battle. enemyID may be empty for random encounters that do
// not persist.
func New(player, enemy *Combatant, enemyID string, inv *inventory.Inventory, tables *content.Tables, roller *dice.Roller) *Battle {
	b := &Battle{
		Player:  player,
		Enemy:   enemy,
		EnemyID: enemyID,
		state:   StateStart,
		inv:     inv,
		tables:  tables,
		roller:  roller,
	}
	b.menu = b.mainMenu()
	return b
}

// State returns the resolver's current state
func (b *Battle) State() State {
	return b.state
}

// Damage is max(1, floor(attack × 1.5 if magic) − defense + roll).
func Damage(attack, defense int, magic bool, roll int) int {
	base := attack
	if magic {
		base = int(math.Floor(float64(attack) * 1.5))
	}
	return max(1, base-defense+roll)
}

// EscapeChance is 0.5 plus 0.1 per level the player has over the enemy.
func EscapeChance(playerLevel, enemyLevel int) float64 {
	return 0.5 + 0.1*float64(playerLevel-enemyLevel)
}

// VictoryExp is the experience granted for defeating an enemy of the given level.
func VictoryExp(enemyLevel int) int {
	return 10 + 5*enemyLevel
}

// Start announces the enemy and opens action selection.
func (b *Battle) Start() Step {
	if b.state != StateStart {
		return Step{State: b.state}
	}
	b.state = StateSelectAction
	b.menu = b.mainMenu()
	return Step{
		Log:   []string{fmt.Sprintf("%s (Lv%d) appeared!", b.Enemy.Name, b.Enemy.Level)},
		State: b.state,
	}
}

// Submit resolves the player's action.
func (b *Battle) Submit(a Action) (Step, error) {
	if b.state != StateSelectAction {
		return Step{State: b.state}, ErrNotAcceptingInput
	}

	var step Step
	switch a.Kind {
	case ActionAttack:
		b.state = StatePlayerAttack
		step = b.playerAttack()
	case ActionMagic:
		spell, err := b.tables.Spell(a.ID)
		if err != nil || !b.inv.HasSpell(a.ID) {
			return Step{State: b.state}, fmt.Errorf("%w: spell %s", ErrUnknownAction, a.ID)
		}
		b.state = StatePlayerMagic
		step = b.castSpell(spell)
	case ActionItem:
		item, err := b.tables.Item(a.ID)
		if err != nil {
			return Step{State: b.state}, fmt.Errorf("%w: item %s", ErrUnknownAction, a.ID)
		}
		b.state = StatePlayerItem
		step = b.useItem(item)
	case ActionEscape:
		b.state = StatePlayerEscape
		step = b.tryEscape()
	default:
		return Step{State: b.state}, fmt.Errorf("%w: kind %d", ErrUnknownAction, a.Kind)
	}

	if step.Rejected {
		b.state = StateSelectAction
		b.menu = b.mainMenu()
		step.State = b.state
		return step, nil
	}

	b.afterPlayerAction(&step)
	step.State = b.state
	return step, nil
}

// EnemyTurn resolves the enemy's action. Valid only in StateEnemyTurn.
func (b *Battle) EnemyTurn() (Step, error) {
	if b.state != StateEnemyTurn {
		return Step{State: b.state}, ErrNotAcceptingInput
	}

	var step Step
	if kind, ok := b.Enemy.Disabled(); ok {
		step.Log = append(step.Log, fmt.Sprintf("%s is %s and cannot move!", b.Enemy.Name, statusAdjective(kind)))
	} else {
		def := b.Player.Stat(content.StatDefense)
		dmg := Damage(b.Enemy.Stat(content.StatAttack), def, b.Enemy.Magic, b.roller.Intn(5))
		b.Player.TakeDamage(dmg)
		verb := "attacks"
		if b.Enemy.Magic {
			verb = "casts a spell"
		}
		step.Log = append(step.Log, fmt.Sprintf("%s %s! %s takes %d damage.", b.Enemy.Name, verb, b.Player.Name, dmg))
		step.Events = append(step.Events,
			Event{Kind: EventAttack, Side: SideEnemy},
			Event{Kind: EventDamage, Side: SidePlayer, Amount: dmg},
		)
	}

	if !b.Player.Alive() {
		b.defeat(&step)
		step.State = b.state
		return step, nil
	}

	b.endTurn(b.Enemy, SideEnemy, &step)
	switch {
	case !b.Enemy.Alive():
		b.victory(&step)
	case !b.Player.Alive():
		b.defeat(&step)
	default:
		b.state = StateSelectAction
		b.menu = b.mainMenu()
	}
	step.State = b.state
	return step, nil
}

func (b *Battle) afterPlayerAction(step *Step) {
	if b.state == StateEscaped {
		return
	}
	if !b.Enemy.Alive() {
		b.victory(step)
		return
	}

	b.endTurn(b.Player, SidePlayer, step)
	if !b.Player.Alive() {
		b.defeat(step)
		return
	}
	b.state = StateEnemyTurn
}

func (b *Battle) playerAttack() Step {
	dmg := Damage(b.Player.Stat(content.StatAttack), b.Enemy.Stat(content.StatDefense), false, b.roller.Intn(5))
	b.Enemy.TakeDamage(dmg)
	return Step{
		Log: []string{fmt.Sprintf("%s attacks! %s takes %d damage.", b.Player.Name, b.Enemy.Name, dmg)},
		Events: []Event{
			{Kind: EventAttack, Side: SidePlayer},
			{Kind: EventDamage, Side: SideEnemy, Amount: dmg},
		},
	}
}

func (b *Battle) tryEscape() Step {
	if b.roller.Chance(EscapeChance(b.Player.Level, b.Enemy.Level)) {
		b.state = StateEscaped
		return Step{Log: []string{"You got away safely!"}}
	}
	return Step{Log: []string{"Couldn't escape!"}}
}

func (b *Battle) victory(step *Step) {
	b.state = StateVictory
	exp := VictoryExp(b.Enemy.Level)
	b.result.ExpGained = exp
	step.Log = append(step.Log,
		fmt.Sprintf("%s was defeated!", b.Enemy.Name),
		fmt.Sprintf("Gained %d EXP!", exp),
	)
}

func (b *Battle) defeat(step *Step) {
	b.state = StateDefeat
	step.Log = append(step.Log, fmt.Sprintf("%s was defeated...", b.Player.Name))
}

// endTurn ticks the combatant's regeneration, poison, buffs and statuses.
func (b *Battle) endTurn(c *Combatant, side Side, step *Step) {
	regens := c.Regens[:0]
	for _, r := range c.Regens {
		next, healed := content.Restore(c.HP, c.MaxHP, b.roller.Range(r.Amount.Min, r.Amount.Max))
		c.HP = next
		if healed > 0 {
			step.Log = append(step.Log, fmt.Sprintf("%s regenerates %d HP.", c.Name, healed))
			step.Events = append(step.Events, Event{Kind: EventHeal, Side: side, Amount: healed})
		}
		r.Remaining--
		if r.Remaining > 0 {
			regens = append(regens, r)
		} else {
			step.Log = append(step.Log, fmt.Sprintf("%s's %s faded.", c.Name, r.Source))
		}
	}
	c.Regens = regens

	if c.HasStatus(content.StatusPoison) {
		dmg := max(1, c.MaxHP/10)
		c.TakeDamage(dmg)
		step.Log = append(step.Log, fmt.Sprintf("%s takes %d poison damage.", c.Name, dmg))
		step.Events = append(step.Events, Event{Kind: EventDamage, Side: side, Amount: dmg})
	}

	buffs := c.Buffs[:0]
	for _, buff := range c.Buffs {
		buff.Remaining--
		if buff.Remaining > 0 {
			buffs = append(buffs, buff)
		} else {
			step.Log = append(step.Log, fmt.Sprintf("%s's %s wore off.", c.Name, buff.Source))
		}
	}
	c.Buffs = buffs

	statuses := c.Statuses[:0]
	for _, s := range c.Statuses {
		s.Remaining--
		if s.Remaining > 0 {
			statuses = append(statuses, s)
		} else {
			step.Log = append(step.Log, fmt.Sprintf("%s is no longer %s.", c.Name, statusAdjective(s.Kind)))
		}
	}
	c.Statuses = statuses
}

// Finish writes the battle's consequences into the record and returns the
// result payload. Calling it again returns the same result without
// reapplying anything.
func (b *Battle) Finish(record *gamedata.Record) Result {
	if b.finished {
		return b.result
	}
	if !b.state.Terminal() {
		return Result{Outcome: OutcomeNone, EnemyID: b.EnemyID}
	}
	b.finished = true
	b.result.EnemyID = b.EnemyID

	record.UpdatePlayer(func(p *gamedata.Player) {
		p.HP = min(b.Player.HP, p.MaxHP)
		p.MP = min(b.Player.MP, p.MaxMP)
	})

	switch b.state {
	case StateVictory:
		b.result.Outcome = OutcomeVictory
		lvl := record.ApplyVictory(b.result.ExpGained)
		b.result.NewLevel = lvl.NewLevel
		if lvl.Leveled {
			b.result.LeveledUp = true
			for _, s := range b.inv.LearnSpellsByLevel(lvl.NewLevel) {
				b.result.Learned = append(b.result.Learned, s.ID)
			}
		}
	case StateDefeat:
		b.result.Outcome = OutcomeDefeat
		record.ApplyDefeat()
		b.result.NewLevel = record.Player().Level
	case StateEscaped:
		b.result.Outcome = OutcomeEscaped
		b.result.NewLevel = record.Player().Level
	}
	return b.result
}

// ResultLog returns the closing lines for a finished battle's result.
func (b *Battle) ResultLog(res Result) []string {
	var lines []string
	if res.LeveledUp {
		lines = append(lines, fmt.Sprintf("Level up! %s is now level %d!", b.Player.Name, res.NewLevel))
		for _, id := range res.Learned {
			if s, err := b.tables.Spell(id); err == nil {
				lines = append(lines, fmt.Sprintf("Learned %s!", s.Name))
			}
		}
	}
	return lines
}

func statusAdjective(kind content.StatusKind) string {
	switch kind {
	case content.StatusPoison:
		return "poisoned"
	case content.StatusFreeze:
		return "frozen"
	case content.StatusSleep:
		return "asleep"
	case content.StatusParalysis:
		return "paralyzed"
	default:
		return string(kind)
	}
}
