// SPDX-License-Identifier: EPL-2.0

// Package feedutil holds the frame bookkeeping and the go-audio PCM
// plumbing shared by the format feeders.
package feedutil

import (
	"errors"
	"time"
)

var ErrInvalidLoop = errors.New("invalid loop window")

// Window tracks the decode position of a feeder in frames, and the loop
// window Feed stops at.
type Window struct {
	Freq  int
	Total int // frames in the file

	Pos   int
	Start int
	End   int
}

func NewWindow(freq, total int) Window {
	return Window{Freq: freq, Total: total, End: total}
}

// Limit returns how many of want frames may be decoded before the end of
// the window.
func (w *Window) Limit(want int) int {
	return max(0, min(want, w.End-w.Pos))
}

func (w *Window) Advance(frames int) { w.Pos += frames }

// Frames converts d to a frame index clamped to the file.
func (w *Window) Frames(d time.Duration) int {
	f := int(d * time.Duration(w.Freq) / time.Second)
	return min(max(f, 0), w.Total)
}

func (w *Window) Duration(frames int) time.Duration {
	if w.Freq == 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(w.Freq)
}

// SetLoop restricts the window to [start, end).
func (w *Window) SetLoop(start, end time.Duration) error {
	s, e := w.Frames(start), w.Frames(end)
	if e <= s {
		return ErrInvalidLoop
	}
	w.Start, w.End = s, e
	if w.Pos < s || w.Pos >= e {
		w.Pos = s
	}
	return nil
}

func (w *Window) Position() time.Duration { return w.Duration(w.Pos) }
func (w *Window) Length() time.Duration   { return w.Duration(w.Total) }
