package math

// Epsilon is the length below which a direction is treated as degenerate.
const Epsilon = 1e-6

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Abs returns |v|.
func Abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
