// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// Sample plays a SampleData from memory.
type Sample struct {
	instance

	data *SampleData
}

// NewSample creates a sample playing data. data may be nil and set later
// with SetData.
func (sys *System) NewSample(data *SampleData) (*Sample, error) {
	if err := sys.check("NewSample"); err != nil {
		return nil, err
	}

	s := &Sample{instance: newInstance(sys, KindSample, 0, DepthInt16, Conf1)}
	if data != nil {
		s.bind(data)
	}
	return s, nil
}

func (s *Sample) read(dst []float32, frames int, _ Depth, chans int) ([]byte, int) {
	if dst == nil {
		return nil, 0
	}
	s.mixLeaf(dst, frames, chans)
	return nil, frames
}

func (s *Sample) isComposite() bool { return false }

// bind makes data the sample's data and resets the playback position and
// loop points.
func (s *Sample) bind(data *SampleData) {
	s.data = data
	s.pcm = data.Bytes()
	s.depth = data.depth
	s.conf = data.conf
	s.freq = data.freq
	s.length = toFixed(data.frames)
	s.loopStart = 0
	s.loopEnd = s.length
	s.pos = 0
}

// SetData replaces the sample's data. The previous data's buffer is
// released according to its ownership. Replacing data is rejected while
// playing. A sample attached to a voice must keep the voice's format; one
// attached to a mixer with a different format, or to a voice, is
// reattached.
func (s *Sample) SetData(data *SampleData) error {
	const op = "Sample.SetData"

	if data == nil {
		return invalidParam(op, "nil data")
	}
	if data.buf.Released() {
		return invalidObject(op, ErrReleased)
	}
	if s.Playing() {
		return invalidObject(op, ErrPlaying)
	}

	old := s.data
	p := s.owner()
	v, m := p.voice, p.mixer

	switch {
	case v != nil:
		f := v.Format()
		if data.conf != f.Conf || data.freq != f.Frequency || data.depth != f.Depth {
			return invalidParam(op, "%w: %s/%dch@%d on %s/%dch@%d voice", ErrFormatMismatch,
				data.depth, data.conf.Channels(), data.freq,
				f.Depth, f.Conf.Channels(), f.Frequency)
		}
		v.Detach()
		s.bind(data)
		if err := v.AttachSample(s); err != nil {
			// Put the previous data back where it was.
			if old != nil {
				s.bind(old)
				if rerr := v.AttachSample(s); rerr != nil {
					s.log.WithField("function", op).WithError(rerr).Warn("restoring previous data failed")
				}
			}
			return err
		}

	case m != nil && (old == nil || !old.sameFormat(data)):
		if err := m.detachChild(s); err != nil {
			return err
		}
		s.bind(data)
		if err := m.AttachSample(s); err != nil {
			return err
		}

	default:
		unlock := s.lock()
		s.bind(data)
		unlock()
	}

	if old != nil && old.buf != data.buf {
		old.buf.Release()
	}

	s.log.WithField("function", op).Debugf("data set to %s", data)
	return nil
}

// Data returns the sample's data, or nil.
func (s *Sample) Data() *SampleData { return s.data }

// Clone returns a detached, stopped sample with the same data and playback
// settings. Owned data is copied; anything else is shared, taking a
// reference on Shared buffers.
func (s *Sample) Clone() (*Sample, error) {
	c, err := s.sys.NewSample(nil)
	if err != nil {
		return nil, err
	}
	if s.data == nil {
		return c, nil
	}

	unlock := s.lock()
	defer unlock()

	c.bind(s.data.ref())
	c.mode = s.mode
	c.speed = s.speed
	c.gain = s.gain
	c.pan = s.pan
	c.length = s.length
	c.loopStart = s.loopStart
	c.loopEnd = s.loopEnd

	return c, nil
}

func (s *Sample) Playing() bool {
	if v := s.owner().voice; v != nil {
		return v.Playing()
	}

	unlock := s.lock()
	defer unlock()
	return s.playing
}

// SetPlaying starts or stops playback. Stopping a sample attached to a
// mixer rewinds it.
func (s *Sample) SetPlaying(playing bool) error {
	const op = "Sample.SetPlaying"

	if playing && s.data == nil {
		return invalidObject(op, ErrNoData)
	}

	if v := s.owner().voice; v != nil {
		if err := v.setPlaying(playing); err != nil {
			return err
		}
		unlock := s.lock()
		s.playing = playing
		unlock()
		return nil
	}

	unlock := s.lock()
	defer unlock()

	s.playing = playing
	if !playing && s.owner().mixer != nil {
		s.pos = 0
	}
	return nil
}

// Position returns the playback position in frames.
func (s *Sample) Position() int {
	if v := s.owner().voice; v != nil {
		return v.Position()
	}

	unlock := s.lock()
	defer unlock()
	return fromFixed(s.pos)
}

func (s *Sample) SetPosition(frames int) error {
	const op = "Sample.SetPosition"

	if frames < 0 || toFixed(frames) > s.length {
		return invalidParam(op, "position %d out of range", frames)
	}
	if v := s.owner().voice; v != nil {
		return v.SetPosition(frames)
	}

	unlock := s.lock()
	defer unlock()

	s.pos = toFixed(frames)
	return nil
}

// Length returns the number of frames played, which may be less than the
// data holds.
func (s *Sample) Length() int {
	unlock := s.lock()
	defer unlock()
	return fromFixed(s.length)
}

// SetLength changes how many frames of the data are played and moves the
// loop end there.
func (s *Sample) SetLength(frames int) error {
	const op = "Sample.SetLength"

	if s.data == nil {
		return invalidObject(op, ErrNoData)
	}
	if frames < 0 || frames > s.data.frames {
		return invalidParam(op, "length %d out of range 0..%d", frames, s.data.frames)
	}
	if s.Playing() {
		return invalidObject(op, ErrPlaying)
	}

	unlock := s.lock()
	defer unlock()

	s.length = toFixed(frames)
	s.loopEnd = s.length
	s.loopStart = min(s.loopStart, s.loopEnd)
	s.pos = min(s.pos, s.length)
	return nil
}

// RemainingFrames returns how many frames are left before a one-shot
// sample stops, ignoring speed.
func (s *Sample) RemainingFrames() int {
	unlock := s.lock()
	defer unlock()
	return max(0, fromFixed(s.length-s.pos))
}

func (s *Sample) PlayMode() PlayMode {
	unlock := s.lock()
	defer unlock()
	return s.mode
}

// SetPlayMode changes the loop behaviour. When looping, the position is
// moved inside the loop.
func (s *Sample) SetPlayMode(mode PlayMode) error {
	const op = "Sample.SetPlayMode"

	if !mode.Valid() {
		return invalidParam(op, "invalid play mode %d", mode)
	}
	if s.owner().voice != nil {
		return invalidObject(op, errVoiceParent)
	}

	unlock := s.lock()
	defer unlock()

	s.mode = mode
	s.clampToLoop()
	return nil
}

// SetLoop sets the loop points in frames.
func (s *Sample) SetLoop(start, end int) error {
	const op = "Sample.SetLoop"

	if start < 0 || end <= start || toFixed(end) > s.length {
		return invalidParam(op, "invalid loop %d..%d", start, end)
	}
	if s.owner().voice != nil {
		return invalidObject(op, errVoiceParent)
	}

	unlock := s.lock()
	defer unlock()

	s.loopStart = toFixed(start)
	s.loopEnd = toFixed(end)
	s.clampToLoop()
	return nil
}

// Loop returns the loop points in frames.
func (s *Sample) Loop() (int, int) {
	unlock := s.lock()
	defer unlock()
	return fromFixed(s.loopStart), fromFixed(s.loopEnd)
}

func (s *Sample) clampToLoop() {
	if s.mode == PlayModeOnce || s.loopEnd <= s.loopStart {
		return
	}
	if s.pos < s.loopStart {
		s.pos = s.loopStart
	} else if s.pos > s.loopEnd-1 {
		s.pos = s.loopEnd - 1
	}
}

func (s *Sample) Speed() float32 {
	unlock := s.lock()
	defer unlock()
	return s.speed
}

// SetSpeed changes the playback rate. Negative speeds play backwards.
func (s *Sample) SetSpeed(speed float32) error {
	return s.setSpeed("Sample.SetSpeed", speed)
}

func (s *Sample) Gain() float32 {
	unlock := s.lock()
	defer unlock()
	return s.gain
}

func (s *Sample) SetGain(gain float32) error {
	return s.setGain("Sample.SetGain", gain)
}

func (s *Sample) Pan() float32 {
	unlock := s.lock()
	defer unlock()
	return s.pan
}

// SetPan sets the stereo position in [-1, 1], or PanNone.
func (s *Sample) SetPan(pan float32) error {
	return s.setPan("Sample.SetPan", pan)
}

func (s *Sample) Frequency() int           { return s.freq }
func (s *Sample) Depth() Depth             { return s.depth }
func (s *Sample) ChannelConf() ChannelConf { return s.conf }
func (s *Sample) Channels() int            { return s.conf.Channels() }
func (s *Sample) Attached() bool           { return s.owner().attached() }

// Duration is the play length at unit speed.
func (s *Sample) Duration() time.Duration {
	if s.freq == 0 {
		return 0
	}
	return time.Duration(s.Length()) * time.Second / time.Duration(s.freq)
}

// Detach removes the sample from its mixer or voice.
func (s *Sample) Detach() error { return detach(s) }

// Destroy detaches the sample and releases its data.
func (s *Sample) Destroy() error {
	if err := s.Detach(); err != nil {
		return err
	}
	if s.data != nil {
		s.data.buf.Release()
		s.data = nil
		s.pcm = nil
	}
	return nil
}
