// SPDX-License-Identifier: EPL-2.0

// Package softvoice is the per-voice playback state shared by the software
// drivers. A Voice renders either a streaming audio.Voice, by pulling
// Update, or a sample loaded with Load, which it plays itself.
package softvoice

import (
	"sync"

	"github.com/ik5/audmix/audio"
)

// Voice is an io.Reader producing PCM in the voice's format. Read never
// blocks and never returns an error; gaps are filled with silence.
type Voice struct {
	voice     *audio.Voice
	depth     audio.Depth
	frameSize int

	mu       sync.Mutex
	data     *audio.VoiceData
	pos      int
	backward bool
	playing  bool
}

// New creates the state for v, which plays in format f. Drivers call it
// from AllocateVoice, before the voice knows its final format.
func New(v *audio.Voice, f audio.VoiceFormat) *Voice {
	return &Voice{
		voice:     v,
		depth:     f.Depth,
		frameSize: f.Conf.Channels() * f.Depth.Size(),
	}
}

// FrameSize is the size of one output frame in bytes.
func (s *Voice) FrameSize() int { return s.frameSize }

// Load switches the voice to playing data itself.
func (s *Voice) Load(data audio.VoiceData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = &data
	s.pos = 0
	s.backward = false
}

func (s *Voice) Unload() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.pos = 0
}

func (s *Voice) SetPlaying(playing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playing = playing
}

func (s *Voice) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Position is the frame of loaded data that plays next.
func (s *Voice) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pos
}

func (s *Voice) SetPosition(frames int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		frames = min(max(frames, 0), s.data.Frames)
	}
	s.pos = frames
}

// Read fills p with whole frames.
func (s *Voice) Read(p []byte) (int, error) {
	p = p[:len(p)/s.frameSize*s.frameSize]

	s.mu.Lock()
	playing, loaded := s.playing, s.data != nil
	s.mu.Unlock()

	var n int
	switch {
	case !playing:
	case loaded:
		n = s.readLoaded(p)
	default:
		n = s.readStreaming(p)
	}

	s.depth.Silence(p[n:])
	return len(p), nil
}

func (s *Voice) readStreaming(p []byte) int {
	n := 0
	for n < len(p) {
		buf, frames := s.voice.Update((len(p) - n) / s.frameSize)
		if frames == 0 || buf == nil {
			break
		}
		n += copy(p[n:], buf[:frames*s.frameSize])
	}
	return n
}

// readLoaded plays the loaded data following its play mode. A one-shot
// sample stops the voice when it runs out.
func (s *Voice) readLoaded(p []byte) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.data
	fs := s.frameSize
	start, end := d.LoopStart, d.LoopEnd
	if end <= start {
		start, end = 0, d.Frames
	}

	n := 0
	for n < len(p) {
		if s.pos < 0 || s.pos >= d.Frames {
			if d.Mode == audio.PlayModeOnce || end <= start {
				s.playing = false
				s.pos = d.Frames
				break
			}
			s.pos = start
		}

		copy(p[n:n+fs], d.PCM[s.pos*fs:(s.pos+1)*fs])
		n += fs

		switch d.Mode {
		case audio.PlayModeLoop:
			s.pos++
			if s.pos >= end {
				s.pos = start
			}
		case audio.PlayModeBidir:
			if s.backward {
				s.pos--
				if s.pos < start {
					s.pos = min(start+1, end-1)
					s.backward = false
				}
			} else {
				s.pos++
				if s.pos >= end {
					s.pos = max(end-2, start)
					s.backward = true
				}
			}
		default:
			s.pos++
		}
	}
	return n
}
