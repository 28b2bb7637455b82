// SPDX-License-Identifier: EPL-2.0

package utils

// FillSilence fills buf with repeated copies of pattern, the encoding of a
// single silent sample. A trailing partial sample is left untouched.
func FillSilence(buf, pattern []byte) {
	n := len(pattern)
	if n == 0 {
		return
	}

	// All-zero patterns are the common case.
	zero := true
	for _, b := range pattern {
		if b != 0 {
			zero = false
			break
		}
	}
	if zero {
		clear(buf[:len(buf)/n*n])
		return
	}

	for i := 0; i+n <= len(buf); i += n {
		copy(buf[i:], pattern)
	}
}
