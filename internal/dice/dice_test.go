package dice

import "testing"

func TestRangeInclusive(t *testing.T) {
	r := NewRoller(&Scripted{Ints: []int{0, 100}})

	if got := r.Range(30, 50); got != 30 {
		t.Errorf("Expected 30, got %d", got)
	}
	if got := r.Range(30, 50); got != 50 {
		t.Errorf("Expected 50 (clamped top), got %d", got)
	}
	if got := r.Range(7, 7); got != 7 {
		t.Errorf("Expected degenerate range to return 7, got %d", got)
	}
}

func TestChance(t *testing.T) {
	r := NewRoller(&Scripted{Floats: []float64{0.49, 0.5}})

	if !r.Chance(0.5) {
		t.Error("Expected 0.49 < 0.5 to succeed")
	}
	if r.Chance(0.5) {
		t.Error("Expected 0.5 < 0.5 to fail")
	}
}

func TestWeighted(t *testing.T) {
	weights := []int{1, 4, 2, 3}
	cases := map[int]int{0: 0, 1: 1, 4: 1, 5: 2, 6: 2, 7: 3, 9: 3}

	for pick, want := range cases {
		r := NewRoller(&Scripted{Ints: []int{pick}})
		if got := r.Weighted(weights); got != want {
			t.Errorf("pick %d: expected index %d, got %d", pick, want, got)
		}
	}

	if got := NewRoller(&Scripted{}).Weighted([]int{0, 0}); got != -1 {
		t.Errorf("Expected -1 for zero weights, got %d", got)
	}
}

func TestRollExpression(t *testing.T) {
	r := NewRoller(&Scripted{Ints: []int{2}})

	res, err := r.Roll("2d6+3")
	if err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}
	// each die rolls 2+1
	if res.Total != 9 {
		t.Errorf("Expected 9, got %d", res.Total)
	}
	if len(res.Rolls) != 2 {
		t.Errorf("Expected 2 rolls, got %d", len(res.Rolls))
	}

	res, err = r.Roll("(1d4+1)*2")
	if err != nil {
		t.Fatalf("Failed to roll: %v", err)
	}
	if res.Total != 8 {
		t.Errorf("Expected 8, got %d", res.Total)
	}

	if _, err := r.Roll("3x6"); err == nil {
		t.Error("Expected error for invalid term")
	}
	if _, err := r.Roll("4/0"); err == nil {
		t.Error("Expected division by zero error")
	}
	if _, err := r.Roll("  "); err == nil {
		t.Error("Expected error for empty expression")
	}
}

func TestSeededRollerDeterministic(t *testing.T) {
	a := NewSeededRoller(42)
	b := NewSeededRoller(42)
	for i := 0; i < 20; i++ {
		if a.Range(1, 100) != b.Range(1, 100) {
			t.Fatal("Expected identical sequences for identical seeds")
		}
	}
}

func TestValidate(t *testing.T) {
	for _, expr := range []string{"1d3", "19+1d16", "(2d6+3)*2", "7"} {
		if err := Validate(expr); err != nil {
			t.Errorf("Expected %q to be valid, got %v", expr, err)
		}
	}
	for _, expr := range []string{"", "1x16", "d", "2d6+"} {
		if err := Validate(expr); err == nil {
			t.Errorf("Expected %q to be rejected", expr)
		}
	}
}

func TestMustRollPanicsOnBadExpression(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustRoll to panic")
		}
	}()
	NewSeededRoller(1).MustRoll("1x16")
}
