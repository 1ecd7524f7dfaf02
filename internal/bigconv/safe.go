package bigconv

import "math"

// SafeAdd returns a+b and reports whether the addition overflowed uint64.
func SafeAdd(x, y uint64) (uint64, bool) {
	return x + y, y > math.MaxUint64-x
}

// SafeSub returns a-b and reports whether the subtraction underflowed uint64.
func SafeSub(x, y uint64) (uint64, bool) {
	return x - y, y > x
}
