// SPDX-License-Identifier: EPL-2.0

package audio

import "github.com/sirupsen/logrus"

// PostProcessFunc is called with the mixed float buffer of every mix
// cycle, interleaved with the mixer's channel count. It runs on the driver
// goroutine with the tree mutex held.
type PostProcessFunc func(buf []float32, frames int)

// Mixer mixes its attached samples, streams and mixers into one float
// buffer. It plays into a voice or into a parent mixer.
type Mixer struct {
	instance

	quality  Quality
	children []node
	acc      []float32
	out      []byte
	post     PostProcessFunc
}

// NewMixer creates a playing mixer. Mixers always mix in DepthFloat32.
func (sys *System) NewMixer(freq int, depth Depth, conf ChannelConf) (*Mixer, error) {
	const op = "NewMixer"

	if err := sys.check(op); err != nil {
		return nil, err
	}
	if freq <= 0 {
		return nil, invalidParam(op, "invalid frequency %d", freq)
	}
	if depth != DepthFloat32 {
		return nil, invalidParam(op, "mixers only support %s, got %s", DepthFloat32, depth)
	}
	if !conf.Valid() {
		return nil, invalidParam(op, "invalid channel configuration %#x", int(conf))
	}

	m := &Mixer{
		instance: newInstance(sys, KindMixer, freq, depth, conf),
		quality:  sys.cfg.Quality,
	}
	m.playing = true

	m.log.WithFields(logrus.Fields{
		"function":  op,
		"frequency": freq,
		"channels":  conf.Channels(),
	}).Debug("mixer created")

	return m, nil
}

func (m *Mixer) isComposite() bool { return true }

// read mixes frames frames of every child. With a nil dst the result is
// converted to depth and returned; otherwise it is added to dst.
func (m *Mixer) read(dst []float32, frames int, depth Depth, _ int) ([]byte, int) {
	if !m.playing {
		return nil, 0
	}
	if frames <= 0 || frames > m.sys.cfg.MaxMixFrames {
		return nil, 0
	}

	chans := m.conf.Channels()
	n := frames * chans
	if cap(m.acc) < n {
		m.acc = make([]float32, n)
	}
	acc := m.acc[:n]
	clear(acc)

	for _, c := range m.children {
		c.read(acc, frames, DepthFloat32, chans)
	}

	if m.gain != 1.0 {
		for i := range acc {
			acc[i] *= m.gain
		}
	}

	if m.post != nil {
		m.post(acc, frames)
	}

	if dst != nil {
		for i, v := range acc {
			dst[i] += v
		}
		return nil, frames
	}

	m.out = encodeOutput(acc, depth, m.out)
	return m.out, frames
}

func (m *Mixer) Quality() Quality {
	unlock := m.lock()
	defer unlock()
	return m.quality
}

// SetQuality selects the interpolation used for children attached later.
// It is rejected while the mixer has children.
func (m *Mixer) SetQuality(q Quality) error {
	const op = "Mixer.SetQuality"

	if !q.Valid() {
		return invalidParam(op, "invalid quality %d", q)
	}

	unlock := m.lock()
	defer unlock()

	if len(m.children) > 0 {
		return invalidObject(op, errHasChildren)
	}
	m.quality = q
	return nil
}

func (m *Mixer) Frequency() int {
	unlock := m.lock()
	defer unlock()
	return m.freq
}

// SetFrequency changes the mix rate and recomputes the step of every leaf.
// It is rejected while the mixer is attached.
func (m *Mixer) SetFrequency(freq int) error {
	const op = "Mixer.SetFrequency"

	if freq <= 0 {
		return invalidParam(op, "invalid frequency %d", freq)
	}
	if m.owner().attached() {
		return invalidObject(op, ErrAlreadyAttached)
	}

	unlock := m.lock()
	defer unlock()

	m.freq = freq
	for _, c := range m.children {
		if !c.isComposite() {
			c.base().restep()
		}
	}
	return nil
}

func (m *Mixer) Gain() float32 {
	unlock := m.lock()
	defer unlock()
	return m.gain
}

// SetGain scales the mixer's output.
func (m *Mixer) SetGain(gain float32) error {
	unlock := m.lock()
	defer unlock()
	m.gain = gain
	return nil
}

func (m *Mixer) Playing() bool {
	unlock := m.lock()
	defer unlock()
	return m.playing
}

func (m *Mixer) SetPlaying(playing bool) error {
	if v := m.owner().voice; v != nil {
		if err := v.setPlaying(playing); err != nil {
			return err
		}
	}

	unlock := m.lock()
	defer unlock()
	m.playing = playing
	return nil
}

// SetPostProcess installs fn, or removes the callback when fn is nil.
func (m *Mixer) SetPostProcess(fn PostProcessFunc) {
	unlock := m.lock()
	defer unlock()
	m.post = fn
}

func (m *Mixer) Depth() Depth             { return m.depth }
func (m *Mixer) ChannelConf() ChannelConf { return m.conf }
func (m *Mixer) Channels() int            { return m.conf.Channels() }
func (m *Mixer) Attached() bool           { return m.owner().attached() }

// Children returns the number of attached objects.
func (m *Mixer) Children() int {
	unlock := m.lock()
	defer unlock()
	return len(m.children)
}

// Detach removes the mixer from its parent. Its own children stay
// attached to it.
func (m *Mixer) Detach() error { return detach(m) }

// DetachAll detaches every child.
func (m *Mixer) DetachAll() {
	unlock := m.lock()
	defer unlock()

	for _, c := range m.children {
		m.release(c)
	}
	m.children = nil
}

// Destroy detaches the mixer and all of its children.
func (m *Mixer) Destroy() error {
	if err := m.Detach(); err != nil {
		return err
	}
	m.DetachAll()
	return nil
}
