// SPDX-License-Identifier: EPL-2.0

// Package beep is an audio.Driver playing through the github.com/gopxl/beep
// speaker. Voices are added to one beep.Mixer as paused beep.Ctrl
// streamers; every voice is coerced to stereo float32 at the speaker rate.
package beep

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/driver/internal/softvoice"
)

var (
	ErrNotOpen      = errors.New("beep driver is not open")
	ErrUnknownVoice = errors.New("voice not allocated by this driver")
)

// Config selects the speaker format.
type Config struct {
	SampleRate beep.SampleRate
	// Buffer is the speaker latency.
	Buffer time.Duration

	Logger *logrus.Logger
}

func DefaultConfig() Config {
	return Config{SampleRate: 48000, Buffer: 100 * time.Millisecond}
}

// streamer adapts a software voice to beep.Streamer.
type streamer struct {
	sv   *softvoice.Voice
	buf  []byte
	done bool // set under speaker.Lock
}

func (s *streamer) Stream(samples [][2]float64) (int, bool) {
	if s.done {
		return 0, false
	}

	n := len(samples) * 8
	if cap(s.buf) < n {
		s.buf = make([]byte, n)
	}
	s.buf = s.buf[:n]
	_, _ = s.sv.Read(s.buf)

	for i := range samples {
		samples[i][0] = float64(math.Float32frombits(binary.LittleEndian.Uint32(s.buf[i*8:])))
		samples[i][1] = float64(math.Float32frombits(binary.LittleEndian.Uint32(s.buf[i*8+4:])))
	}
	return len(samples), true
}

func (s *streamer) Err() error { return nil }

type voice struct {
	st   *streamer
	ctrl *beep.Ctrl
}

// Driver plays voices through the beep speaker.
type Driver struct {
	cfg Config
	log *logrus.Entry

	mu     sync.Mutex
	open   bool
	mixer  *beep.Mixer
	voices map[*audio.Voice]*voice
}

func New(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Driver{
		cfg:    cfg,
		log:    logger.WithField("driver", "beep"),
		voices: make(map[*audio.Voice]*voice),
	}
}

func (d *Driver) Name() string { return "beep" }

func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.open {
		return nil
	}

	sr := d.cfg.SampleRate
	if err := speaker.Init(sr, sr.N(d.cfg.Buffer)); err != nil {
		return fmt.Errorf("%w", err)
	}
	d.mixer = &beep.Mixer{}
	speaker.Play(d.mixer)
	d.open = true

	d.log.WithFields(logrus.Fields{
		"sample_rate": int(sr),
		"buffer":      d.cfg.Buffer,
	}).Info("speaker ready")
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return nil
	}
	speaker.Clear()
	d.voices = make(map[*audio.Voice]*voice)
	d.open = false
	return nil
}

// AllocateVoice forces the voice to stereo float32 at the speaker rate.
func (d *Driver) AllocateVoice(v *audio.Voice, f *audio.VoiceFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return ErrNotOpen
	}

	f.Frequency = int(d.cfg.SampleRate)
	f.Depth = audio.DepthFloat32
	f.Conf = audio.Conf2

	st := &streamer{sv: softvoice.New(v, *f)}
	bv := &voice{st: st, ctrl: &beep.Ctrl{Streamer: st, Paused: true}}
	d.voices[v] = bv
	v.SetDriverData(st.sv)

	speaker.Lock()
	d.mixer.Add(bv.ctrl)
	speaker.Unlock()
	return nil
}

// DeallocateVoice ends the streamer; the mixer drops it on its next pull.
func (d *Driver) DeallocateVoice(v *audio.Voice) {
	d.mu.Lock()
	bv, ok := d.voices[v]
	delete(d.voices, v)
	d.mu.Unlock()
	if !ok {
		return
	}

	speaker.Lock()
	bv.st.done = true
	speaker.Unlock()
}

func (d *Driver) lookup(v *audio.Voice) (*voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	bv, ok := d.voices[v]
	if !ok {
		return nil, ErrUnknownVoice
	}
	return bv, nil
}

func (d *Driver) LoadVoice(v *audio.Voice, data audio.VoiceData) error {
	bv, err := d.lookup(v)
	if err != nil {
		return err
	}
	bv.st.sv.Load(data)
	return nil
}

func (d *Driver) UnloadVoice(v *audio.Voice) {
	if bv, err := d.lookup(v); err == nil {
		bv.st.sv.Unload()
	}
}

func (d *Driver) setPaused(v *audio.Voice, paused bool) error {
	bv, err := d.lookup(v)
	if err != nil {
		return err
	}
	bv.st.sv.SetPlaying(!paused)
	speaker.Lock()
	bv.ctrl.Paused = paused
	speaker.Unlock()
	return nil
}

func (d *Driver) StartVoice(v *audio.Voice) error { return d.setPaused(v, false) }
func (d *Driver) StopVoice(v *audio.Voice) error  { return d.setPaused(v, true) }

func (d *Driver) VoiceIsPlaying(v *audio.Voice) bool {
	bv, err := d.lookup(v)
	return err == nil && bv.st.sv.Playing()
}

func (d *Driver) VoicePosition(v *audio.Voice) int {
	bv, err := d.lookup(v)
	if err != nil {
		return 0
	}
	return bv.st.sv.Position()
}

func (d *Driver) SetVoicePosition(v *audio.Voice, frames int) error {
	bv, err := d.lookup(v)
	if err != nil {
		return err
	}
	bv.st.sv.SetPosition(frames)
	return nil
}
