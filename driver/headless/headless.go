// SPDX-License-Identifier: EPL-2.0

// Package headless is an audio.Driver without a device. Voices are
// rendered in memory, either on a ticker that simulates a sound card or on
// demand with Pump, and may be recorded to any io.Writer.
package headless

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/driver/internal/softvoice"
)

var ErrUnknownVoice = errors.New("voice not allocated by this driver")

// Config controls a headless Driver.
type Config struct {
	// Period is how often the playback goroutine renders every playing
	// voice. Zero disables the goroutine; voices then only advance through
	// Pump.
	Period time.Duration

	// Logger defaults to a discarding logger.
	Logger *logrus.Logger
}

type voice struct {
	sv     *softvoice.Voice
	format audio.VoiceFormat

	mu   sync.Mutex
	buf  []byte
	rec  io.Writer
	pend time.Duration // rendering debt below one frame
}

// Driver renders voices without a device.
type Driver struct {
	cfg Config
	log *logrus.Entry

	mu     sync.Mutex
	voices map[*audio.Voice]*voice
	stop   chan struct{}
	wg     sync.WaitGroup
}

func New(cfg Config) *Driver {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Driver{
		cfg:    cfg,
		log:    logger.WithField("driver", "headless"),
		voices: make(map[*audio.Voice]*voice),
	}
}

func (d *Driver) Name() string { return "headless" }

func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cfg.Period <= 0 || d.stop != nil {
		return nil
	}
	d.stop = make(chan struct{})
	d.wg.Add(1)
	go d.run(d.stop)

	d.log.WithField("period", d.cfg.Period).Debug("playback goroutine started")
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	stop := d.stop
	d.stop = nil
	d.mu.Unlock()

	if stop != nil {
		close(stop)
		d.wg.Wait()
	}
	return nil
}

func (d *Driver) run(stop <-chan struct{}) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.cfg.Period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			d.tick(d.cfg.Period)
		}
	}
}

// tick renders elapsed worth of audio on every playing voice.
func (d *Driver) tick(elapsed time.Duration) {
	d.mu.Lock()
	voices := make([]*voice, 0, len(d.voices))
	for _, hv := range d.voices {
		voices = append(voices, hv)
	}
	d.mu.Unlock()

	for _, hv := range voices {
		if !hv.sv.Playing() {
			continue
		}
		hv.mu.Lock()
		hv.pend += elapsed
		frames := int(hv.pend * time.Duration(hv.format.Frequency) / time.Second)
		hv.pend -= time.Duration(frames) * time.Second / time.Duration(hv.format.Frequency)
		if _, err := hv.render(frames); err != nil {
			d.log.WithError(err).Warn("recording failed")
		}
		hv.mu.Unlock()
	}
}

// render produces frames frames and records them. hv.mu must be held.
func (hv *voice) render(frames int) ([]byte, error) {
	n := frames * hv.sv.FrameSize()
	if cap(hv.buf) < n {
		hv.buf = make([]byte, n)
	}
	hv.buf = hv.buf[:n]

	// softvoice never fails and always fills whole frames
	_, _ = hv.sv.Read(hv.buf)

	if hv.rec != nil {
		if _, err := hv.rec.Write(hv.buf); err != nil {
			return hv.buf, fmt.Errorf("%w", err)
		}
	}
	return hv.buf, nil
}

func (d *Driver) lookup(v *audio.Voice) (*voice, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	hv, ok := d.voices[v]
	if !ok {
		return nil, ErrUnknownVoice
	}
	return hv, nil
}

// Pump renders frames frames of v right away, as if the device had played
// them, and returns the PCM in the voice's format. The slice is reused by
// the next call for the same voice.
func (d *Driver) Pump(v *audio.Voice, frames int) ([]byte, error) {
	hv, err := d.lookup(v)
	if err != nil {
		return nil, err
	}
	hv.mu.Lock()
	defer hv.mu.Unlock()
	return hv.render(frames)
}

// Record sends everything v renders from now on to w. A nil w stops
// recording.
func (d *Driver) Record(v *audio.Voice, w io.Writer) error {
	hv, err := d.lookup(v)
	if err != nil {
		return err
	}
	hv.mu.Lock()
	defer hv.mu.Unlock()
	hv.rec = w
	return nil
}

// AllocateVoice accepts any format.
func (d *Driver) AllocateVoice(v *audio.Voice, f *audio.VoiceFormat) error {
	hv := &voice{sv: softvoice.New(v, *f), format: *f}

	d.mu.Lock()
	d.voices[v] = hv
	d.mu.Unlock()

	v.SetDriverData(hv.sv)
	return nil
}

func (d *Driver) DeallocateVoice(v *audio.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.voices, v)
}

func (d *Driver) state(v *audio.Voice) (*softvoice.Voice, error) {
	hv, err := d.lookup(v)
	if err != nil {
		return nil, err
	}
	return hv.sv, nil
}

func (d *Driver) LoadVoice(v *audio.Voice, data audio.VoiceData) error {
	sv, err := d.state(v)
	if err != nil {
		return err
	}
	sv.Load(data)
	return nil
}

func (d *Driver) UnloadVoice(v *audio.Voice) {
	if sv, err := d.state(v); err == nil {
		sv.Unload()
	}
}

func (d *Driver) StartVoice(v *audio.Voice) error {
	sv, err := d.state(v)
	if err != nil {
		return err
	}
	sv.SetPlaying(true)
	return nil
}

func (d *Driver) StopVoice(v *audio.Voice) error {
	sv, err := d.state(v)
	if err != nil {
		return err
	}
	sv.SetPlaying(false)
	return nil
}

func (d *Driver) VoiceIsPlaying(v *audio.Voice) bool {
	sv, err := d.state(v)
	return err == nil && sv.Playing()
}

func (d *Driver) VoicePosition(v *audio.Voice) int {
	sv, err := d.state(v)
	if err != nil {
		return 0
	}
	return sv.Position()
}

func (d *Driver) SetVoicePosition(v *audio.Voice, frames int) error {
	sv, err := d.state(v)
	if err != nil {
		return err
	}
	sv.SetPosition(frames)
	return nil
}
