package data

import "testing"

func TestAvailableMonsters_TierGating(t *testing.T) {
	tests := []struct {
		playerLevel int
		wantCount   int
	}{
		{1, 4},   // tier 1 only
		{4, 4},   // still below tier 5
		{5, 7},   // tiers 1 + 5
		{10, 10}, // + tier 10
		{15, 12}, // + tier 15
		{20, 15}, // + tier 20
		{30, 18}, // everything
		{120, 18},
	}
	for _, tt := range tests {
		got := AvailableMonsters(tt.playerLevel)
		if len(got) != tt.wantCount {
			t.Errorf("AvailableMonsters(%d) returned %d monsters, want %d",
				tt.playerLevel, len(got), tt.wantCount)
		}
	}
}

func TestAvailableMonsters_StableOrder(t *testing.T) {
	first := AvailableMonsters(30)
	for range 10 {
		again := AvailableMonsters(30)
		for i := range first {
			if first[i].ID != again[i].ID {
				t.Fatalf("order changed at %d: %q vs %q", i, first[i].ID, again[i].ID)
			}
		}
	}
	if first[0].ID != "slime_green" {
		t.Errorf("first monster = %q, want slime_green", first[0].ID)
	}
}

func TestFindMonster(t *testing.T) {
	m, ok := FindMonster(1, "slime")
	if !ok || m.ID != "slime_green" {
		t.Errorf("FindMonster(1, slime) = %q, %v, want slime_green, true", m.ID, ok)
	}

	// Case-insensitive substring match.
	m, ok = FindMonster(10, "FIRE")
	if !ok || m.ID != "imp_fire" {
		t.Errorf("FindMonster(10, FIRE) = %q, %v, want imp_fire, true", m.ID, ok)
	}

	// Monster exists but is above the player's tier.
	if _, ok := FindMonster(1, "drake"); ok {
		t.Error("FindMonster(1, drake) matched, want no match below tier 20")
	}

	if _, ok := FindMonster(120, "chupacabra"); ok {
		t.Error("FindMonster(120, chupacabra) matched, want no match")
	}
}
