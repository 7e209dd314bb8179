// SPDX-License-Identifier: MIT
/*
Package bitint provides power-of-two helpers used for frame-size
validation and buffer sizing. Every supported words-per-subframe value is
a power of two, and scan buffers are grown in power-of-two steps.

Design principles:
- Zero allocations: all operations use stack memory only
- Predictable performance: O(1) constant time operations
- Platform aware: correct on both 32-bit and 64-bit platforms
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Powers of two are
// preserved; the subtraction of 1 before measuring the bit length is what
// keeps exact powers from doubling. Non-positive input returns 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of two
// have exactly one bit set, so (n & (n-1)) clears to zero only for them.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
