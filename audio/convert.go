// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"

	"github.com/ik5/audmix/utils"
)

// clamp limits v to [lo, hi] without branches.
func clamp(v, lo, hi int32) int32 {
	v -= lo
	v &= ^v >> 31
	v += lo
	v -= hi
	v &= v >> 31
	v += hi
	return v
}

// unsignedOffset is the value an unsigned integer sample has at silence.
func (d Depth) unsignedOffset() int32 {
	switch d.Base() {
	case DepthInt8:
		return 0x80
	case DepthInt16:
		return 0x8000
	default:
		return 0x800000
	}
}

// putSample encodes v as sample i of buf.
func (d Depth) putSample(buf []byte, i int, v float32) {
	if d.Base() == DepthFloat32 {
		if d.Unsigned() {
			v += 1.0
		}
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
		return
	}

	// Keep the scaled value far away from int32 overflow; the clamp below
	// does the real work.
	v = max(-2, min(2, v))
	hi := int32(d.maxMagnitude())
	x := clamp(int32(v*float32(hi)), -hi-1, hi)
	if d.Unsigned() {
		x += d.unsignedOffset()
	}

	switch d.Base() {
	case DepthInt8:
		buf[i] = byte(x)
	case DepthInt16:
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(x))
	default:
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(x)&0xFFFFFF|signFill(x, d))
	}
}

// signFill fills the top byte of a signed 24-bit container with the sign.
func signFill(x int32, d Depth) uint32 {
	if d.Unsigned() || x >= 0 {
		return 0
	}
	return 0xFF000000
}

// encodeOutput converts the float mix in src to depth, reusing out when it
// is large enough.
func encodeOutput(src []float32, depth Depth, out []byte) []byte {
	need := len(src) * depth.Size()
	if cap(out) < need {
		out = make([]byte, need)
	}
	out = out[:need]

	for i, v := range src {
		depth.putSample(out, i, v)
	}
	return out
}

// silence fills buf with the silent value of depth.
func silence(buf []byte, depth Depth) {
	var pattern [4]byte
	p := pattern[:depth.Size()]
	depth.putSample(p, 0, 0)
	utils.FillSilence(buf, p)
}

// Silence fills buf with the silent value of d. Unsigned depths are
// silent at their midpoint.
func (d Depth) Silence(buf []byte) { silence(buf, d) }
