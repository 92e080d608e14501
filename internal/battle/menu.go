package battle

import "fmt"

// MenuKind is the action menu's sub-state
type MenuKind int

const (
	MenuMain MenuKind = iota
	MenuSpells
	MenuItems
)

// MenuEntry is one selectable line
type MenuEntry struct {
	Label   string
	Action  Action
	Opens   MenuKind // for main entries that open a sub-menu
	Submenu bool
	Back    bool
	Enabled bool // false only greys the entry out; Confirm still submits it
}

// Menu is the current action menu
type Menu struct {
	Kind    MenuKind
	Entries []MenuEntry
	Cursor  int
}

// Selected returns the entry under the cursor
func (m *Menu) Selected() MenuEntry {
	return m.Entries[m.Cursor]
}

// Menu returns the current action menu
func (b *Battle) Menu() *Menu {
	return b.menu
}

// MoveCursor moves the selection, clamped to the entry list.
func (b *Battle) MoveCursor(delta int) {
	m := b.menu
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Entries)-1)
}

// Back returns from a sub-menu to the main menu.
func (b *Battle) Back() {
	if b.menu.Kind != MenuMain {
		b.menu = b.mainMenu()
	}
}

// Confirm activates the entry under the cursor. It returns the resolved step
// and true when an action was submitted, or false when only the menu changed.
func (b *Battle) Confirm() (Step, bool, error) {
	if b.state != StateSelectAction {
		return Step{State: b.state}, false, ErrNotAcceptingInput
	}

	entry := b.menu.Selected()
	switch {
	case entry.Back:
		b.menu = b.mainMenu()
		return Step{State: b.state}, false, nil
	case entry.Submenu:
		switch entry.Opens {
		case MenuSpells:
			b.menu = b.spellMenu()
		case MenuItems:
			b.menu = b.itemMenu()
		}
		return Step{State: b.state}, false, nil
	}

	step, err := b.Submit(entry.Action)
	if err != nil {
		return step, false, err
	}
	return step, true, nil
}

func (b *Battle) mainMenu() *Menu {
	return &Menu{
		Kind: MenuMain,
		Entries: []MenuEntry{
			{Label: "Attack", Action: Action{Kind: ActionAttack}, Enabled: true},
			{Label: "Magic", Submenu: true, Opens: MenuSpells, Enabled: true},
			{Label: "Item", Submenu: true, Opens: MenuItems, Enabled: true},
			{Label: "Escape", Action: Action{Kind: ActionEscape}, Enabled: true},
		},
	}
}

func (b *Battle) spellMenu() *Menu {
	m := &Menu{Kind: MenuSpells}
	for _, s := range b.inv.Spells() {
		m.Entries = append(m.Entries, MenuEntry{
			Label:   fmt.Sprintf("%s (%d MP)", s.Name, s.MPCost),
			Action:  Action{Kind: ActionMagic, ID: s.ID},
			Enabled: b.Player.MP >= s.MPCost,
		})
	}
	m.Entries = append(m.Entries, MenuEntry{Label: "Back", Back: true, Enabled: true})
	return m
}

func (b *Battle) itemMenu() *Menu {
	m := &Menu{Kind: MenuItems}
	for _, e := range b.inv.Items() {
		m.Entries = append(m.Entries, MenuEntry{
			Label:   fmt.Sprintf("%s x%d", e.Item.Name, e.Count),
			Action:  Action{Kind: ActionItem, ID: e.Item.ID},
			Enabled: true,
		})
	}
	m.Entries = append(m.Entries, MenuEntry{Label: "Back", Back: true, Enabled: true})
	return m
}
