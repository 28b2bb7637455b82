// SPDX-License-Identifier: EPL-2.0

package audio

// fixLoopedPosition applies the play mode to pos after it has been advanced
// by step. It returns false when the instance has nothing more to play.
func (in *instance) fixLoopedPosition() bool {
	if in.kind == KindStream {
		return in.stream.fixPosition()
	}

	switch in.mode {
	case PlayModeLoop:
		in.wrap()
		return true

	case PlayModeBidir:
		in.reflect()
		return true

	default:
		if in.pos >= 0 && in.pos < in.length {
			return true
		}
		if in.pos < 0 {
			in.pos = 0
		} else {
			in.pos = in.length
		}
		in.playing = false
		return false
	}
}

// wrap moves pos back into [loopStart, loopEnd) by whole loop widths.
func (in *instance) wrap() {
	width := in.loopEnd - in.loopStart
	if width <= 0 {
		return
	}
	if in.pos >= in.loopStart && in.pos < in.loopEnd {
		return
	}
	off := (in.pos - in.loopStart) % width
	if off < 0 {
		off += width
	}
	in.pos = in.loopStart + off
}

// reflect bounces pos between the loop points. Every reflection is followed
// by a check of the opposite boundary, since a large step on a short loop
// can overshoot both ends in one frame.
func (in *instance) reflect() {
	width := in.loopEnd - in.loopStart
	if width <= 0 {
		return
	}

	dist := in.pos - in.loopStart
	if dist < 0 {
		dist = -dist
	}
	step := in.step
	if step < 0 {
		step = -step
	}
	limit := 4 + 2*(dist+step)/width

	forward := in.step >= 0
	for range limit {
		if forward {
			if in.pos < in.loopEnd {
				break
			}
			in.step = -in.step
			in.pos = in.loopEnd - (in.pos - in.loopEnd) - 1
			forward = false
			continue
		}

		if in.pos >= in.loopStart && in.pos < in.loopEnd {
			break
		}
		in.step = -in.step
		in.pos = in.loopStart + (in.loopStart - in.pos)
		forward = true
	}

	switch {
	case in.pos < in.loopStart:
		in.pos = in.loopStart
	case in.pos >= in.loopEnd:
		in.pos = in.loopEnd - 1
	}
}
