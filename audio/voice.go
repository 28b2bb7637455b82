// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Voice connects a sample, stream or mixer to a device through the
// system's driver. The voice's mutex is shared by the whole tree attached
// to it.
type Voice struct {
	sys    *System
	log    *logrus.Entry
	format VoiceFormat

	mu        sync.Mutex
	attached  node
	streaming bool

	dataMu     sync.Mutex
	driverData any
}

// NewVoice allocates a voice with the driver. The driver may adjust the
// format; Format reports what was actually granted.
func (sys *System) NewVoice(f VoiceFormat) (*Voice, error) {
	const op = "NewVoice"

	if err := sys.check(op); err != nil {
		return nil, err
	}
	if f.Frequency <= 0 {
		return nil, invalidParam(op, "invalid frequency %d", f.Frequency)
	}
	if !f.Depth.Valid() || !f.Conf.Valid() {
		return nil, invalidParam(op, "invalid format %s/%#x", f.Depth, int(f.Conf))
	}

	v := &Voice{sys: sys}
	v.log = sys.log.WithField("component", "voice")

	if err := sys.driver.AllocateVoice(v, &f); err != nil {
		return nil, generic(op, err)
	}
	v.format = f

	sys.addVoice(v)

	v.log.WithFields(logrus.Fields{
		"function":  op,
		"frequency": f.Frequency,
		"depth":     f.Depth.String(),
		"channels":  f.Conf.Channels(),
	}).Debug("voice allocated")

	return v, nil
}

func (v *Voice) Format() VoiceFormat      { return v.format }
func (v *Voice) Frequency() int           { return v.format.Frequency }
func (v *Voice) Depth() Depth             { return v.format.Depth }
func (v *Voice) ChannelConf() ChannelConf { return v.format.Conf }
func (v *Voice) Channels() int            { return v.format.Conf.Channels() }
func (v *Voice) System() *System          { return v.sys }
func (v *Voice) Logger() *logrus.Entry    { return v.log }
func (v *Voice) FrameSize() int           { return v.format.Conf.Channels() * v.format.Depth.Size() }

// DriverData returns what the driver stored with SetDriverData.
func (v *Voice) DriverData() any {
	v.dataMu.Lock()
	defer v.dataMu.Unlock()
	return v.driverData
}

func (v *Voice) SetDriverData(d any) {
	v.dataMu.Lock()
	defer v.dataMu.Unlock()
	v.driverData = d
}

// Attached reports whether anything is attached.
func (v *Voice) Attached() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.attached != nil
}

// Streaming reports whether the attachment is pulled through Update.
func (v *Voice) Streaming() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.streaming
}

// AttachSample hands s to the driver, which plays it directly. The sample
// must match the voice's format exactly.
func (v *Voice) AttachSample(s *Sample) error {
	return v.attach("Voice.AttachSample", s)
}

// AttachStream plays s through the voice. Its depth must match the voice.
func (v *Voice) AttachStream(s *Stream) error {
	return v.attach("Voice.AttachStream", s)
}

// AttachMixer plays m through the voice. The mix is converted to the
// voice depth.
func (v *Voice) AttachMixer(m *Mixer) error {
	return v.attach("Voice.AttachMixer", m)
}

func (v *Voice) attach(op string, n node) error {
	in := n.base()
	streaming := in.kind != KindSample

	v.mu.Lock()
	switch {
	case v.attached != nil:
		v.mu.Unlock()
		return invalidObject(op, ErrVoiceBusy)
	case in.owner().attached():
		v.mu.Unlock()
		return invalidObject(op, ErrAlreadyAttached)
	case in.conf != v.format.Conf || in.freq != v.format.Frequency ||
		(in.kind != KindMixer && in.depth != v.format.Depth):
		v.mu.Unlock()
		return invalidParam(op, "%w: %s/%dch@%d on %s/%dch@%d voice", ErrFormatMismatch,
			in.depth, in.conf.Channels(), in.freq,
			v.format.Depth, v.format.Conf.Channels(), v.format.Frequency)
	case in.kind == KindSample && in.pcm == nil:
		v.mu.Unlock()
		return invalidObject(op, ErrNoData)
	}

	v.attached = n
	v.streaming = streaming
	in.setOwner(parentRef{voice: v})
	setMutex(n, &v.mu)

	var snap sampleState
	if !streaming {
		snap = snapshot(in)
	}
	v.mu.Unlock()

	// The driver may pull from the voice while starting, so it runs
	// without the mutex.
	var err error
	if streaming {
		err = v.sys.driver.StartVoice(v)
	} else {
		err = v.load(snap)
	}

	if err != nil {
		v.mu.Lock()
		v.attached = nil
		v.streaming = false
		in.setOwner(parentRef{})
		setMutex(n, nil)
		v.mu.Unlock()

		v.log.WithFields(logrus.Fields{
			"function": op,
			"driver":   v.sys.driver.Name(),
		}).WithError(err).Error("attach failed")

		return generic(op, err)
	}

	v.log.WithField("function", op).Debugf("%s attached", in.kind)
	return nil
}

// sampleState is what a voice hands to the driver when a sample is
// attached.
type sampleState struct {
	data    VoiceData
	pos     int
	playing bool
}

// snapshot copies the playback state of a sample. The caller holds the
// voice mutex.
func snapshot(in *instance) sampleState {
	return sampleState{
		data: VoiceData{
			PCM:       in.pcm,
			Frames:    fromFixed(in.length),
			Depth:     in.depth,
			Conf:      in.conf,
			Mode:      in.mode,
			LoopStart: fromFixed(in.loopStart),
			LoopEnd:   fromFixed(in.loopEnd),
		},
		pos:     fromFixed(in.pos),
		playing: in.playing,
	}
}

// load hands a sample's data to the driver and starts it if it was
// playing.
func (v *Voice) load(st sampleState) error {
	drv := v.sys.driver

	if err := drv.LoadVoice(v, st.data); err != nil {
		return err
	}

	if err := drv.SetVoicePosition(v, st.pos); err != nil {
		drv.UnloadVoice(v)
		return err
	}

	if st.playing {
		if err := drv.StartVoice(v); err != nil {
			drv.UnloadVoice(v)
			return err
		}
	}
	return nil
}

// Detach removes whatever is attached. A sample gets the driver's playback
// position and state back.
func (v *Voice) Detach() {
	v.mu.Lock()
	n := v.attached
	if n == nil {
		v.mu.Unlock()
		return
	}
	streaming := v.streaming
	v.attached = nil
	v.streaming = false
	v.mu.Unlock()

	drv := v.sys.driver
	in := n.base()

	var pos int
	var playing bool
	if !streaming {
		pos = drv.VoicePosition(v)
		playing = drv.VoiceIsPlaying(v)
	}
	if err := drv.StopVoice(v); err != nil {
		v.log.WithField("function", "Voice.Detach").WithError(err).Warn("stopping voice failed")
	}
	if !streaming {
		drv.UnloadVoice(v)
	}

	v.mu.Lock()
	if !streaming {
		in.pos = toFixed(pos)
		in.playing = playing
	}
	setMutex(n, nil)
	in.setOwner(parentRef{})
	v.mu.Unlock()
}

// Update produces frames frames for a streaming voice, in the voice's
// format. It returns nil when nothing is attached or playing, in which case
// the driver plays silence. The returned slice is reused by the next call.
//
// Update is meant to be called from the driver's playback goroutine only.
func (v *Voice) Update(frames int) ([]byte, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.attached == nil || !v.streaming {
		return nil, 0
	}
	return v.attached.read(nil, frames, v.format.Depth, v.format.Conf.Channels())
}

func (v *Voice) Playing() bool {
	v.mu.Lock()
	attached := v.attached != nil
	v.mu.Unlock()
	if !attached {
		return false
	}
	return v.sys.driver.VoiceIsPlaying(v)
}

// SetPlaying starts or stops the device.
func (v *Voice) SetPlaying(playing bool) error {
	return v.setPlaying(playing)
}

func (v *Voice) setPlaying(playing bool) error {
	const op = "Voice.SetPlaying"

	drv := v.sys.driver
	if playing == drv.VoiceIsPlaying(v) {
		return nil
	}

	var err error
	if playing {
		err = drv.StartVoice(v)
	} else {
		err = drv.StopVoice(v)
	}
	if err != nil {
		return generic(op, err)
	}
	return nil
}

// Position returns the driver's play position in frames for a voice
// playing a sample, and 0 otherwise.
func (v *Voice) Position() int {
	v.mu.Lock()
	ok := v.attached != nil && !v.streaming
	v.mu.Unlock()
	if !ok {
		return 0
	}
	return v.sys.driver.VoicePosition(v)
}

func (v *Voice) SetPosition(frames int) error {
	const op = "Voice.SetPosition"

	v.mu.Lock()
	ok := v.attached != nil && !v.streaming
	v.mu.Unlock()
	if !ok {
		return invalidObject(op, ErrNoData)
	}
	if err := v.sys.driver.SetVoicePosition(v, frames); err != nil {
		return generic(op, err)
	}
	return nil
}

// Destroy detaches and deallocates the voice.
func (v *Voice) Destroy() {
	v.Detach()
	v.sys.driver.DeallocateVoice(v)
	v.sys.removeVoice(v)
}
