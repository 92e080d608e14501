// Package inventory tracks the player's consumables, learned spells and the
// scroll locations already read. Items are stored by id with quantities.
package inventory

import (
	"fmt"
	"sort"
	"sync"

	"chosenoffset.com/deepruins/internal/content"
)

// DefaultMaxSlots is the nominal number of distinct item slots.
const DefaultMaxSlots = 20

// Entry is an item definition paired with its quantity
type Entry struct {
	Item  *content.Item
	Count int
}

// SaveData is the persisted form of an inventory
type SaveData struct {
	Items          map[string]int `json:"items"`
	LearnedSpells  []string       `json:"learnedSpells"`
	LearnedScrolls []string       `json:"learnedScrolls"`
	MaxSlots       int            `json:"maxSlots"`
}

// Inventory holds all items and spell knowledge for the player
type Inventory struct {
	mu     sync.RWMutex
	tables *content.Tables

	// items maps item id to quantity; absent means zero
	items map[string]int

	learnedSpells  map[string]bool
	learnedScrolls map[string]bool

	// MaxSlots is reported by HasSpace but never blocks AddItem
	MaxSlots int

	// OnChange callback when inventory changes (for UI updates)
	OnChange func()
}

// New creates a new empty inventory backed by the given content tables
func New(tables *content.Tables) *Inventory {
	return &Inventory{
		tables:         tables,
		items:          make(map[string]int),
		learnedSpells:  make(map[string]bool),
		learnedScrolls: make(map[string]bool),
		MaxSlots:       DefaultMaxSlots,
	}
}

// AddItem adds qty of an item. Capacity is not enforced, so any positive
// quantity is accepted.
func (inv *Inventory) AddItem(id string, qty int) bool {
	if qty <= 0 {
		return false
	}

	inv.mu.Lock()
	inv.items[id] += qty
	inv.mu.Unlock()

	inv.notifyChange()
	return true
}

// UseItem removes qty of an item. It returns false, changing nothing, when
// the inventory holds fewer than qty.
func (inv *Inventory) UseItem(id string, qty int) bool {
	if qty <= 0 {
		return false
	}

	inv.mu.Lock()
	current := inv.items[id]
	if current < qty {
		inv.mu.Unlock()
		return false
	}
	inv.items[id] = current - qty
	if inv.items[id] == 0 {
		delete(inv.items, id)
	}
	inv.mu.Unlock()

	inv.notifyChange()
	return true
}

// HasItem checks if the inventory holds at least qty of the item
func (inv *Inventory) HasItem(id string, qty int) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.items[id] >= qty
}

// Count returns the quantity of an item (0 if not present)
func (inv *Inventory) Count(id string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.items[id]
}

// UsedSlots returns the number of distinct items held
func (inv *Inventory) UsedSlots() int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items)
}

// HasSpace reports whether the nominal slot count has room for a new item
func (inv *Inventory) HasSpace() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return len(inv.items) < inv.MaxSlots
}

// Items returns held items sorted by kind (healing, buff, attack) then rarity.
// Ids missing from the content tables are skipped.
func (inv *Inventory) Items() []Entry {
	inv.mu.RLock()
	defs := make([]*content.Item, 0, len(inv.items))
	counts := make(map[string]int, len(inv.items))
	for id, n := range inv.items {
		def, err := inv.tables.Item(id)
		if err != nil {
			continue
		}
		defs = append(defs, def)
		counts[id] = n
	}
	inv.mu.RUnlock()

	// stable base order before the kind/rarity sort
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	content.SortItems(defs)

	out := make([]Entry, len(defs))
	for i, def := range defs {
		out[i] = Entry{Item: def, Count: counts[def.ID]}
	}
	return out
}

// LearnSpellsByLevel learns every level-unlocked spell at or below level not
// already known and returns the newly learned ones. Calling it again with
// the same level learns nothing.
func (inv *Inventory) LearnSpellsByLevel(level int) []*content.Spell {
	inv.mu.Lock()
	var learned []*content.Spell
	for _, s := range inv.tables.LevelSpells(level) {
		if inv.learnedSpells[s.ID] {
			continue
		}
		inv.learnedSpells[s.ID] = true
		learned = append(learned, s)
	}
	inv.mu.Unlock()

	if len(learned) > 0 {
		inv.notifyChange()
	}
	return learned
}

// LearnSpellFromScroll reads the scroll at location once. The first read
// learns every spell taught there; later reads return nothing.
func (inv *Inventory) LearnSpellFromScroll(location string) []*content.Spell {
	spells := inv.tables.SpellsAt(location)

	inv.mu.Lock()
	if inv.learnedScrolls[location] || len(spells) == 0 {
		inv.mu.Unlock()
		return nil
	}
	inv.learnedScrolls[location] = true
	var learned []*content.Spell
	for _, s := range spells {
		if !inv.learnedSpells[s.ID] {
			inv.learnedSpells[s.ID] = true
			learned = append(learned, s)
		}
	}
	inv.mu.Unlock()

	inv.notifyChange()
	return learned
}

// HasSpell reports whether the spell has been learned
func (inv *Inventory) HasSpell(id string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.learnedSpells[id]
}

// HasScroll reports whether the scroll location has been read
func (inv *Inventory) HasScroll(location string) bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.learnedScrolls[location]
}

// Spells returns learned spells sorted by kind then level
func (inv *Inventory) Spells() []*content.Spell {
	inv.mu.RLock()
	out := make([]*content.Spell, 0, len(inv.learnedSpells))
	for id := range inv.learnedSpells {
		if s, err := inv.tables.Spell(id); err == nil {
			out = append(out, s)
		}
	}
	inv.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	content.SortSpells(out)
	return out
}

// Clear drops every item and all spell knowledge
func (inv *Inventory) Clear() {
	inv.mu.Lock()
	inv.items = make(map[string]int)
	inv.learnedSpells = make(map[string]bool)
	inv.learnedScrolls = make(map[string]bool)
	inv.MaxSlots = DefaultMaxSlots
	inv.mu.Unlock()

	inv.notifyChange()
}

// notifyChange calls the OnChange callback if set
func (inv *Inventory) notifyChange() {
	if inv.OnChange != nil {
		inv.OnChange()
	}
}

// --- Serialization ---

// Snapshot returns the persisted form of the inventory
func (inv *Inventory) Snapshot() SaveData {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	data := SaveData{
		Items:          make(map[string]int, len(inv.items)),
		LearnedSpells:  sortedKeys(inv.learnedSpells),
		LearnedScrolls: sortedKeys(inv.learnedScrolls),
		MaxSlots:       inv.MaxSlots,
	}
	for id, n := range inv.items {
		data.Items[id] = n
	}
	return data
}

// Restore replaces the inventory contents with saved data. A missing slot
// count falls back to the default.
func (inv *Inventory) Restore(data SaveData) {
	inv.mu.Lock()
	inv.items = make(map[string]int, len(data.Items))
	for id, n := range data.Items {
		if n > 0 {
			inv.items[id] = n
		}
	}
	inv.learnedSpells = make(map[string]bool, len(data.LearnedSpells))
	for _, id := range data.LearnedSpells {
		inv.learnedSpells[id] = true
	}
	inv.learnedScrolls = make(map[string]bool, len(data.LearnedScrolls))
	for _, id := range data.LearnedScrolls {
		inv.learnedScrolls[id] = true
	}
	inv.MaxSlots = data.MaxSlots
	if inv.MaxSlots <= 0 {
		inv.MaxSlots = DefaultMaxSlots
	}
	inv.mu.Unlock()

	inv.notifyChange()
}

// Debug returns a string representation of the inventory
func (inv *Inventory) Debug() string {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	total := 0
	for _, n := range inv.items {
		total += n
	}
	return fmt.Sprintf("Inventory{%d items, %d total, %d spells}", len(inv.items), total, len(inv.learnedSpells))
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
