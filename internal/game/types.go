package game

import (
	"chosenoffset.com/deepruins/internal/battle"
	"chosenoffset.com/deepruins/internal/content"
)

// Scene names registered with the manager
const (
	SceneMenu     = "menu"
	SceneWorldMap = "worldmap"
	SceneDungeon  = "dungeon"
	SceneBattle   = "battle"
)

// BattleData starts a battle. EnemyID is empty for random encounters, which
// are never recorded as defeated.
type BattleData struct {
	Enemy   content.EnemyStats
	EnemyID string
	Return  string // scene to go back to after victory or escape
	Area    string // dungeon area when Return is the dungeon
}

// DungeonData enters a dungeon. Fresh entries from the world map start at
// the entrance; returns from battle resume at the saved cell.
type DungeonData struct {
	Area   string
	Fresh  bool
	Result *battle.Result
}

// WorldMapData returns to the world map, optionally after a battle.
type WorldMapData struct {
	Result  *battle.Result
	Message string
}

// Message is an on-screen notice that fades over time.
type Message struct {
	Text     string
	TimeLeft float64 // Seconds remaining
	MaxTime  float64 // Initial duration
}

// toasts is a short list of fading notices
type toasts struct {
	list []Message
}

func (t *toasts) show(text string) {
	t.list = append(t.list, Message{Text: text, TimeLeft: 3.0, MaxTime: 3.0})
	if len(t.list) > 4 {
		t.list = t.list[len(t.list)-4:]
	}
}

func (t *toasts) update(dt float64) {
	var active []Message
	for _, msg := range t.list {
		msg.TimeLeft -= dt
		if msg.TimeLeft > 0 {
			active = append(active, msg)
		}
	}
	t.list = active
}
