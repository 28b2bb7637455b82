// SPDX-License-Identifier: EPL-2.0

package audio

import "math"

const invSqrt2 = float32(1.0 / math.Sqrt2)

// buildMatrix returns the gain matrix mapping src channels onto dst
// channels, flattened row-major as m[d*srcChans+s]. Gain and pan are folded
// in so the mix loop only has to multiply and add.
func buildMatrix(src, dst ChannelConf, gain, pan float32, law PanLaw) []float32 {
	sc := src.Channels()
	dc := dst.Channels()
	m := make([]float32, dc*sc)
	at := func(d, s int) *float32 { return &m[d*sc+s] }

	for i := range min(sc, dc) {
		*at(i, i) = 1.0
	}

	switch {
	case dc == 1 && src.Main() > 1:
		// Downmix: front pair at equal power, centre kept whole.
		*at(0, 0) = invSqrt2
		*at(0, 1) = invSqrt2
		if src.HasCenter() {
			*at(0, src.Main()-1) = 1.0
		}

	case src.HasCenter() && !dst.HasCenter():
		c := src.Main() - 1
		*at(0, c) = invSqrt2
		*at(1, c) = invSqrt2
	}

	if src.Main() != dst.Main() && src.LFE() > 0 && dst.LFE() > 0 {
		*at(dc-1, sc-1) = 1.0
	}

	if pan != PanNone && dc >= 2 {
		l, r := panGains(pan, law)
		for s := range sc {
			*at(0, s) *= l
			*at(1, s) *= r
		}
	}

	for i := range m {
		m[i] *= gain
	}

	return m
}

// panGains returns the left and right row scale for pan in [-1, 1].
func panGains(pan float32, law PanLaw) (float32, float32) {
	if law == PanConstantPower {
		l := float32(math.Sqrt(float64(1-pan) / 2))
		r := float32(math.Sqrt(float64(1+pan) / 2))
		return l, r
	}
	return min(1, 1-pan), min(1, 1+pan)
}
