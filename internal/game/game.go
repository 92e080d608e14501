// Package game holds the concrete scenes: the title menu, the world map,
// the dungeons and battles. Scenes talk to each other only through the
// payloads passed to Switch and the shared game data record.
package game

import (
	"fmt"

	"chosenoffset.com/deepruins/internal/content"
	"chosenoffset.com/deepruins/internal/gamedata"
	"chosenoffset.com/deepruins/internal/scene"
)

// starterItems are granted on a new game
var starterItems = []struct {
	ID  string
	Qty int
}{
	{"small_potion", 3},
	{"mana_potion", 1},
}

// Register adds every scene to the manager
func Register(m *scene.Manager) {
	m.Register(SceneMenu, func(data any) scene.Scene { return NewMenuScene() })
	m.Register(SceneWorldMap, func(data any) scene.Scene {
		d, _ := data.(*WorldMapData)
		return NewWorldMapScene(d)
	})
	m.Register(SceneDungeon, func(data any) scene.Scene {
		d, _ := data.(*DungeonData)
		return NewDungeonScene(d)
	})
	m.Register(SceneBattle, func(data any) scene.Scene {
		d, _ := data.(*BattleData)
		return NewBattleScene(d)
	})
}

// newGame resets the record to a fresh game with the starting kit.
func newGame(sc *scene.Context) {
	sc.Record.Reset()
	inv := sc.Record.Inventory()
	for _, s := range starterItems {
		inv.AddItem(s.ID, s.Qty)
	}
	inv.LearnSpellsByLevel(sc.Record.Player().Level)
	sc.Record.SetFlag("firstTime", true)
	sc.Logger().Info("Started a new game")
}

// fieldUsable reports whether an item can be used outside battle: healing
// items whose restoration is immediate.
func fieldUsable(item *content.Item) bool {
	if item.Kind != content.ItemHealing || item.Effect.Regenerates() {
		return false
	}
	e := item.Effect
	return e.HP > 0 || e.MP > 0 || e.Healing != nil || e.Mana != nil
}

// useFieldItem consumes one healing item and applies it to the stored
// player. The returned line describes what happened.
func useFieldItem(sc *scene.Context, id string) (string, error) {
	item, err := sc.Tables.Item(id)
	if err != nil {
		return "", err
	}
	if !fieldUsable(item) {
		return "", fmt.Errorf("%s cannot be used here", item.Name)
	}
	if !sc.Record.Inventory().UseItem(id, 1) {
		return "", fmt.Errorf("no %s left", item.Name)
	}

	e := item.Effect
	var hp, mp int
	sc.Record.UpdatePlayer(func(p *gamedata.Player) {
		var n int
		p.HP, n = content.Restore(p.HP, p.MaxHP, e.HP+content.RollRange(sc.Roller, e.Healing))
		hp += n
		p.MP, n = content.Restore(p.MP, p.MaxMP, e.MP+content.RollRange(sc.Roller, e.Mana))
		mp += n
	})

	switch {
	case hp > 0 && mp > 0:
		return fmt.Sprintf("Used %s. Recovered %d HP and %d MP.", item.Name, hp, mp), nil
	case mp > 0:
		return fmt.Sprintf("Used %s. Recovered %d MP.", item.Name, mp), nil
	default:
		return fmt.Sprintf("Used %s. Recovered %d HP.", item.Name, hp), nil
	}
}
