package gamedata

// Level-up gains
const (
	levelUpMaxHP = 10
	levelUpMaxMP = 5
)

// LevelUp reports what a victory changed
type LevelUp struct {
	Leveled  bool
	NewLevel int
}

// ExpToNext is the experience needed to leave level.
func ExpToNext(level int) int {
	return level * 100
}

// GainExp adds experience and performs at most one level-up. On level-up the
// player is fully restored and experience resets to zero; surplus is not
// carried over.
func (p *Player) GainExp(exp int) LevelUp {
	p.Exp += exp
	if p.Exp < ExpToNext(p.Level) {
		return LevelUp{NewLevel: p.Level}
	}

	p.Level++
	p.MaxHP += levelUpMaxHP
	p.MaxMP += levelUpMaxMP
	p.HP = p.MaxHP
	p.MP = p.MaxMP
	p.Exp = 0
	return LevelUp{Leveled: true, NewLevel: p.Level}
}

// ApplyVictory grants experience to the stored player
func (r *Record) ApplyVictory(exp int) LevelUp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.player.GainExp(exp)
}

// ApplyDefeat leaves the player alive with 1 HP
func (r *Record) ApplyDefeat() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.player.HP = 1
}
