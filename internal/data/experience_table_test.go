package data

import "testing"

func TestCumulativeExp(t *testing.T) {
	if got := CumulativeExp(0); got != 0 {
		t.Errorf("CumulativeExp(0) = %d, want 0", got)
	}
	if got := CumulativeExp(1); got != 45 {
		t.Errorf("CumulativeExp(1) = %d, want 45", got)
	}
	if got := CumulativeExp(2); got != 45+128 {
		t.Errorf("CumulativeExp(2) = %d, want 173", got)
	}
	// Out-of-range clamps to the top of the curve.
	if got, top := CumulativeExp(500), CumulativeExp(MaxCurveLevel); got != top {
		t.Errorf("CumulativeExp(500) = %d, want %d", got, top)
	}
}

func TestComputeLevel_Boundaries(t *testing.T) {
	// At exactly the cumulative total for level L the player is level L;
	// one point below they are still L-1.
	for level := 2; level <= MaxCurveLevel; level++ {
		threshold := CumulativeExp(level)
		if got := ComputeLevel(threshold); got != level {
			t.Fatalf("ComputeLevel(%d) = %d, want %d", threshold, got, level)
		}
		if got := ComputeLevel(threshold - 1); got != level-1 {
			t.Fatalf("ComputeLevel(%d) = %d, want %d", threshold-1, got, level-1)
		}
	}
}

func TestComputeLevel_Extremes(t *testing.T) {
	if got := ComputeLevel(0); got != 1 {
		t.Errorf("ComputeLevel(0) = %d, want 1", got)
	}
	if got := ComputeLevel(-100); got != 1 {
		t.Errorf("ComputeLevel(-100) = %d, want 1", got)
	}
	if got := ComputeLevel(1 << 40); got != MaxCurveLevel {
		t.Errorf("ComputeLevel(huge) = %d, want %d", got, MaxCurveLevel)
	}
}

func TestCurve_Monotonic(t *testing.T) {
	for level := 2; level <= MaxCurveLevel; level++ {
		if RequiredExp[level] <= RequiredExp[level-1] {
			t.Errorf("RequiredExp[%d] = %d not above RequiredExp[%d] = %d",
				level, RequiredExp[level], level-1, RequiredExp[level-1])
		}
	}
}
