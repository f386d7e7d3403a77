package data

// MaxCurveLevel is the highest level the experience curve defines.
const MaxCurveLevel = 120

// RequiredExp[L] is the experience needed to go from level L-1 to L.
// Index 0 is unused.
var RequiredExp = [MaxCurveLevel + 1]int64{
	0,
	45, 128, 232, 353, 489, 636, 795, 963, 1140, 1325,
	1517, 1716, 1921, 2131, 2348, 2570, 2796, 3027, 3263, 3503,
	3747, 3995, 4248, 4504, 4764, 5028, 5295, 5566, 5840, 6117,
	6398, 6681, 6968, 7257, 7550, 7845, 8143, 8444, 8747, 9053,
	9361, 9671, 9984, 10299, 10616, 10935, 11257, 11580, 11906, 12234,
	16251, 16957, 17676, 18409, 19156, 19918, 20694, 21485, 22292, 23114,
	23951, 24805, 25675, 26562, 27465, 28386, 29324, 30280, 31254, 32246,
	33256, 34286, 35334, 36402, 37489, 38597, 39724, 40872, 42041, 43231,
	44442, 45675, 46930, 48207, 49506, 50829, 52175, 53545, 54939, 56358,
	57801, 59270, 60764, 62285, 63831, 65404, 67004, 68632, 70287, 71970,
	73682, 75422, 77192, 78991, 80820, 82679, 84568, 86489, 88440, 90422,
	92437, 94483, 96562, 98674, 100819, 102998, 105211, 107458, 109740, 112057,
}

// cumExp[L] is the total experience needed to reach level L from zero
// (prefix sums of RequiredExp).
var cumExp = func() [MaxCurveLevel + 1]int64 {
	var arr [MaxCurveLevel + 1]int64
	for i := 1; i <= MaxCurveLevel; i++ {
		arr[i] = arr[i-1] + RequiredExp[i]
	}
	return arr
}()

// CumulativeExp returns the total experience needed to reach the given
// level. Out-of-range levels clamp to the curve bounds.
func CumulativeExp(level int) int64 {
	if level < 1 {
		return 0
	}
	if level > MaxCurveLevel {
		level = MaxCurveLevel
	}
	return cumExp[level]
}

// ComputeLevel returns the theoretical level for a total experience
// value: the largest L with CumulativeExp(L) <= totalExp. Negative
// totals behave as zero.
func ComputeLevel(totalExp int64) int {
	if totalExp < 0 {
		totalExp = 0
	}
	low, high, ans := 1, MaxCurveLevel, 1
	for low <= high {
		mid := (low + high) / 2
		if cumExp[mid] <= totalExp {
			ans = mid
			low = mid + 1
		} else {
			high = mid - 1
		}
	}
	return ans
}
