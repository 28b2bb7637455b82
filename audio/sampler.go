// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/ik5/audmix/utils"

// samplerFunc reads the frame at the current position of in, converted to
// normalized floats, into in.frame[:chans].
type samplerFunc func(in *instance, chans int)

// pickSampler selects the reader for a leaf from the quality of the mixer
// it is attached to. Depth specific decoding happens in Depth.Decode.
func pickSampler(q Quality) samplerFunc {
	switch q {
	case QualityLinear:
		return linear
	case QualityCubic:
		return cubic
	default:
		return point
	}
}

func point(in *instance, chans int) {
	i0 := fromFixed(in.pos) * chans
	for c := range chans {
		in.frame[c] = in.depth.Decode(in.pcm, i0+c)
	}
}

func linear(in *instance, chans int) {
	f := fromFixed(in.pos)
	p1 := f * chans
	p2 := in.nextFrame(f) * chans
	frac := fracPart(in.pos)

	for c := range chans {
		in.frame[c] = utils.Lerp(in.depth.Decode(in.pcm, p1+c), in.depth.Decode(in.pcm, p2+c), frac)
	}
}

func cubic(in *instance, chans int) {
	f := fromFixed(in.pos)
	next := in.nextFrame(f)
	p0 := in.prevFrame(f) * chans
	p1 := f * chans
	p2 := next * chans
	p3 := in.nextFrame(next) * chans
	frac := fracPart(in.pos)

	for c := range chans {
		in.frame[c] = utils.Cubic(
			in.depth.Decode(in.pcm, p0+c),
			in.depth.Decode(in.pcm, p1+c),
			in.depth.Decode(in.pcm, p2+c),
			in.depth.Decode(in.pcm, p3+c),
			frac,
		)
	}
}

// nextFrame returns the frame interpolation should blend towards from frame
// f. At the end of the data it wraps to the loop start, reflects to the last
// frame of a bidirectional loop, or stays on f for one-shot data and stream
// fragments.
func (in *instance) nextFrame(f int) int {
	switch {
	case in.kind == KindStream || in.mode == PlayModeOnce:
		if f+1 >= fromFixed(in.length) {
			return f
		}
	case in.mode == PlayModeLoop:
		if f+1 >= fromFixed(in.loopEnd) {
			return fromFixed(in.loopStart)
		}
	case in.mode == PlayModeBidir:
		if end := fromFixed(in.loopEnd); f+1 >= end {
			return end - 1
		}
	}
	return f + 1
}

// prevFrame is the mirror of nextFrame for the look-behind frame of the
// cubic sampler.
func (in *instance) prevFrame(f int) int {
	switch {
	case in.kind == KindStream || in.mode == PlayModeOnce:
		if f == 0 {
			return f
		}
	case in.mode == PlayModeLoop:
		if f-1 < fromFixed(in.loopStart) {
			return fromFixed(in.loopEnd) - 1
		}
	case in.mode == PlayModeBidir:
		if start := fromFixed(in.loopStart); f-1 < start {
			return start
		}
	}
	return f - 1
}
