// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

// Playback positions, loop points and steps are fixed-point sample indices
// with fracShift fractional bits.
const (
	fracShift = 8
	fracOne   = 1 << fracShift
	fracMask  = fracOne - 1
)

// minSpeed is the smallest accepted playback speed magnitude.
const minSpeed = 1.0 / 64.0

func toFixed(frames int) int { return frames << fracShift }

func fromFixed(pos int) int { return pos >> fracShift }

// fracPart returns the fractional part of pos in [0, 1).
func fracPart(pos int) float32 {
	return float32(pos&fracMask) / fracOne
}

// computeStep returns the fixed-point increment per output frame for data at
// srcFreq played at speed into a destination running at dstFreq. A nonzero
// speed never yields a zero step.
func computeStep(srcFreq, dstFreq int, speed float32) int {
	step := int(math.Round(float64(srcFreq<<fracShift) * float64(speed) / float64(dstFreq)))
	if step == 0 {
		if speed > 0 {
			return 1
		}
		return -1
	}
	return step
}
