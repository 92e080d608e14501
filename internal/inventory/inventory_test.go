package inventory

import (
	"testing"

	"chosenoffset.com/deepruins/internal/content"
)

func newInventory(t *testing.T) *Inventory {
	t.Helper()
	tables, err := content.Default()
	if err != nil {
		t.Fatalf("Failed to load content: %v", err)
	}
	return New(tables)
}

func TestAddAndUseItem(t *testing.T) {
	inv := newInventory(t)

	if !inv.AddItem("small_potion", 3) {
		t.Fatal("Expected AddItem to succeed")
	}
	if inv.Count("small_potion") != 3 {
		t.Errorf("Expected 3 potions, got %d", inv.Count("small_potion"))
	}

	if inv.UseItem("small_potion", 5) {
		t.Error("Expected UseItem to fail with insufficient quantity")
	}
	if inv.Count("small_potion") != 3 {
		t.Errorf("Expected count unchanged after failed use, got %d", inv.Count("small_potion"))
	}

	if !inv.UseItem("small_potion", 3) {
		t.Fatal("Expected UseItem to succeed")
	}
	if inv.HasItem("small_potion", 1) {
		t.Error("Expected potion entry removed at zero")
	}
	if inv.UsedSlots() != 0 {
		t.Errorf("Expected 0 used slots, got %d", inv.UsedSlots())
	}

	if inv.UseItem("elixir", 1) {
		t.Error("Expected UseItem on missing item to fail")
	}
}

func TestAddItemIgnoresCapacity(t *testing.T) {
	inv := newInventory(t)
	inv.MaxSlots = 1

	inv.AddItem("small_potion", 1)
	if inv.HasSpace() {
		t.Error("Expected HasSpace to report full")
	}
	if !inv.AddItem("elixir", 1) {
		t.Error("Expected AddItem to succeed beyond nominal capacity")
	}
	if inv.UsedSlots() != 2 {
		t.Errorf("Expected 2 used slots, got %d", inv.UsedSlots())
	}
}

func TestCountNeverNegative(t *testing.T) {
	inv := newInventory(t)
	inv.AddItem("fire_bomb", 1)

	for i := 0; i < 3; i++ {
		inv.UseItem("fire_bomb", 1)
	}
	if inv.Count("fire_bomb") != 0 {
		t.Errorf("Expected count 0, got %d", inv.Count("fire_bomb"))
	}
}

func TestLearnSpellsByLevelIdempotent(t *testing.T) {
	inv := newInventory(t)

	first := inv.LearnSpellsByLevel(3)
	if len(first) == 0 {
		t.Fatal("Expected spells learned at level 3")
	}
	if !inv.HasSpell("fire_bolt") || !inv.HasSpell("ice_lance") {
		t.Error("Expected fire_bolt and ice_lance to be learned")
	}

	again := inv.LearnSpellsByLevel(3)
	if len(again) != 0 {
		t.Errorf("Expected second call to learn nothing, got %d", len(again))
	}

	before := len(inv.Spells())
	inv.LearnSpellsByLevel(3)
	if len(inv.Spells()) != before {
		t.Error("Expected learned set unchanged")
	}

	next := inv.LearnSpellsByLevel(4)
	for _, s := range next {
		if s.Unlock.Level != 4 {
			t.Errorf("Expected only level 4 spells, got %s (level %d)", s.ID, s.Unlock.Level)
		}
	}
}

func TestLearnSpellFromScrollOnce(t *testing.T) {
	inv := newInventory(t)

	learned := inv.LearnSpellFromScroll("ancient_library")
	if len(learned) != 1 || learned[0].ID != "wind_blade" {
		t.Fatalf("Expected wind_blade, got %v", learned)
	}
	if !inv.HasScroll("ancient_library") {
		t.Error("Expected location recorded as read")
	}

	if again := inv.LearnSpellFromScroll("ancient_library"); len(again) != 0 {
		t.Errorf("Expected repeat read to learn nothing, got %d", len(again))
	}
	if unknown := inv.LearnSpellFromScroll("nowhere"); len(unknown) != 0 {
		t.Error("Expected unknown location to learn nothing")
	}
	if inv.HasScroll("nowhere") {
		t.Error("Expected unknown location not to be recorded")
	}
}

func TestItemsSorted(t *testing.T) {
	inv := newInventory(t)
	inv.AddItem("dark_orb", 1)
	inv.AddItem("strength_ring", 1)
	inv.AddItem("elixir", 1)
	inv.AddItem("small_potion", 2)
	inv.AddItem("retired_item", 1)

	entries := inv.Items()
	want := []string{"small_potion", "elixir", "strength_ring", "dark_orb"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Item.ID != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], e.Item.ID)
		}
	}
	if entries[0].Count != 2 {
		t.Errorf("Expected count 2, got %d", entries[0].Count)
	}
}

func TestSnapshotRestore(t *testing.T) {
	inv := newInventory(t)
	inv.AddItem("mana_potion", 4)
	inv.LearnSpellsByLevel(1)
	inv.LearnSpellFromScroll("ice_temple")

	data := inv.Snapshot()

	restored := newInventory(t)
	restored.Restore(data)

	if restored.Count("mana_potion") != 4 {
		t.Errorf("Expected 4 mana potions, got %d", restored.Count("mana_potion"))
	}
	if !restored.HasSpell("heal") || !restored.HasSpell("blizzard") {
		t.Error("Expected learned spells restored")
	}
	if !restored.HasScroll("ice_temple") {
		t.Error("Expected learned scroll restored")
	}

	restored.Restore(SaveData{})
	if restored.MaxSlots != DefaultMaxSlots {
		t.Errorf("Expected default max slots, got %d", restored.MaxSlots)
	}
}

func TestOnChange(t *testing.T) {
	inv := newInventory(t)
	calls := 0
	inv.OnChange = func() { calls++ }

	inv.AddItem("small_potion", 1)
	inv.UseItem("small_potion", 1)
	inv.UseItem("small_potion", 1)

	if calls != 2 {
		t.Errorf("Expected 2 change notifications, got %d", calls)
	}
}
