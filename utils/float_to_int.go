// SPDX-License-Identifier: EPL-2.0

package utils

// FloatToInt scales a normalized sample to a signed integer of the given
// bit depth, clipping anything outside [-1, 1]. The positive maximum is
// 2^(bits-1)-1, so both ends map symmetrically.
func FloatToInt(x float32, bits int) int {
	if x != x {
		return 0
	}
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}
	scale := float32(int(1)<<(bits-1) - 1)
	return int(x * scale)
}

// IntToFloat is the inverse of FloatToInt.
func IntToFloat(v, bits int) float32 {
	return float32(v) / float32(int(1)<<(bits-1)-1)
}
