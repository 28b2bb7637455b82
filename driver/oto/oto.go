// SPDX-License-Identifier: EPL-2.0

// Package oto is an audio.Driver playing through github.com/ebitengine/oto.
//
// oto allows one context per process, so a Driver should be opened once and
// shared. Every voice becomes an oto player on that context; voices are
// coerced to the context's rate and channel count, and to float32 or int16
// samples.
package oto

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/driver/internal/softvoice"
)

var (
	ErrNotOpen      = errors.New("oto driver is not open")
	ErrUnknownVoice = errors.New("voice not allocated by this driver")
	ErrChannels     = errors.New("oto plays mono or stereo only")
)

// Config selects the oto context format.
type Config struct {
	SampleRate int
	// Channels is 1 or 2.
	Channels int
	// Int16 selects signed 16-bit output instead of float32.
	Int16 bool
	// BufferSize is the device buffer length; zero lets oto choose.
	BufferSize time.Duration

	Logger *logrus.Logger
}

func DefaultConfig() Config {
	return Config{SampleRate: 44100, Channels: 2}
}

type player struct {
	sv *softvoice.Voice
	p  *oto.Player
}

// Driver plays voices through oto.
type Driver struct {
	cfg Config
	log *logrus.Entry

	mu        sync.Mutex
	ctx       device
	suspended bool
	players   map[*audio.Voice]*player
}

// device is the part of *oto.Context the driver uses.
type device interface {
	NewPlayer(r io.Reader) *oto.Player
	Suspend() error
	Resume() error
}

func New(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Driver{
		cfg:     cfg,
		log:     logger.WithField("driver", "oto"),
		players: make(map[*audio.Voice]*player),
	}
}

func (d *Driver) Name() string { return "oto" }

func (d *Driver) format() oto.Format {
	if d.cfg.Int16 {
		return oto.FormatSignedInt16LE
	}
	return oto.FormatFloat32LE
}

func (d *Driver) depth() audio.Depth {
	if d.cfg.Int16 {
		return audio.DepthInt16
	}
	return audio.DepthFloat32
}

func (d *Driver) conf() audio.ChannelConf {
	if d.cfg.Channels == 1 {
		return audio.Conf1
	}
	return audio.Conf2
}

func (d *Driver) Open() error {
	if d.cfg.Channels != 1 && d.cfg.Channels != 2 {
		return fmt.Errorf("%w: %d", ErrChannels, d.cfg.Channels)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx != nil {
		if !d.suspended {
			return nil
		}
		if err := d.ctx.Resume(); err != nil {
			return fmt.Errorf("%w", err)
		}
		d.suspended = false
		d.log.Info("oto context resumed")
		return nil
	}

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   d.cfg.SampleRate,
		ChannelCount: d.cfg.Channels,
		Format:       d.format(),
		BufferSize:   d.cfg.BufferSize,
	})
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	<-ready
	d.ctx = ctx

	d.log.WithFields(logrus.Fields{
		"sample_rate": d.cfg.SampleRate,
		"channels":    d.cfg.Channels,
		"depth":       d.depth().String(),
	}).Info("oto context ready")
	return nil
}

// Close suspends the context. oto cannot create a second context, so a
// later Open resumes this one.
func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for v, pl := range d.players {
		if err := pl.p.Close(); err != nil {
			d.log.WithError(err).Warn("closing player failed")
		}
		delete(d.players, v)
	}
	if d.ctx == nil || d.suspended {
		return nil
	}
	if err := d.ctx.Suspend(); err != nil {
		return fmt.Errorf("%w", err)
	}
	d.suspended = true
	return nil
}

// AllocateVoice forces the voice to the context format.
func (d *Driver) AllocateVoice(v *audio.Voice, f *audio.VoiceFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx == nil {
		return ErrNotOpen
	}

	f.Frequency = d.cfg.SampleRate
	f.Conf = d.conf()
	f.Depth = d.depth()

	sv := softvoice.New(v, *f)
	p := d.ctx.NewPlayer(sv)
	if f.BufferFrames > 0 {
		p.SetBufferSize(f.BufferFrames * sv.FrameSize())
	}
	d.players[v] = &player{sv: sv, p: p}
	v.SetDriverData(sv)
	return nil
}

func (d *Driver) DeallocateVoice(v *audio.Voice) {
	d.mu.Lock()
	pl, ok := d.players[v]
	delete(d.players, v)
	d.mu.Unlock()

	if ok {
		if err := pl.p.Close(); err != nil {
			d.log.WithError(err).Warn("closing player failed")
		}
	}
}

func (d *Driver) lookup(v *audio.Voice) (*player, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	pl, ok := d.players[v]
	if !ok {
		return nil, ErrUnknownVoice
	}
	return pl, nil
}

func (d *Driver) LoadVoice(v *audio.Voice, data audio.VoiceData) error {
	pl, err := d.lookup(v)
	if err != nil {
		return err
	}
	pl.sv.Load(data)
	return nil
}

func (d *Driver) UnloadVoice(v *audio.Voice) {
	if pl, err := d.lookup(v); err == nil {
		pl.sv.Unload()
	}
}

func (d *Driver) StartVoice(v *audio.Voice) error {
	pl, err := d.lookup(v)
	if err != nil {
		return err
	}
	pl.sv.SetPlaying(true)
	pl.p.Play()
	return nil
}

func (d *Driver) StopVoice(v *audio.Voice) error {
	pl, err := d.lookup(v)
	if err != nil {
		return err
	}
	pl.p.Pause()
	pl.sv.SetPlaying(false)
	return nil
}

// VoiceIsPlaying follows the voice, not the player: a one-shot sample that
// ran out reports false while oto keeps pulling silence.
func (d *Driver) VoiceIsPlaying(v *audio.Voice) bool {
	pl, err := d.lookup(v)
	return err == nil && pl.sv.Playing()
}

func (d *Driver) VoicePosition(v *audio.Voice) int {
	pl, err := d.lookup(v)
	if err != nil {
		return 0
	}
	return pl.sv.Position()
}

func (d *Driver) SetVoicePosition(v *audio.Voice, frames int) error {
	pl, err := d.lookup(v)
	if err != nil {
		return err
	}
	pl.sv.SetPosition(frames)
	return nil
}
