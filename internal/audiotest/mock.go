// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/ik5/audmix/audio"
)

// ErrScripted is returned by Driver operations configured to fail.
var ErrScripted = errors.New("scripted failure")

// voiceState is what Driver remembers per voice.
type voiceState struct {
	data     *audio.VoiceData
	playing  bool
	position int
}

// Driver is a scripted audio.Driver. It never pulls from voices on its
// own; tests call Voice.Update directly.
type Driver struct {
	mu     sync.Mutex
	voices map[*audio.Voice]*voiceState
	calls  []string

	// Coerce, when set, may rewrite the format requested in AllocateVoice.
	Coerce func(f *audio.VoiceFormat)

	FailOpen     bool
	FailAllocate bool
	FailLoad     bool
	FailStart    bool

	// FailNextLoad fails the next LoadVoice only.
	FailNextLoad bool

	// OnStart runs inside StartVoice, without the voice mutex held.
	OnStart func(v *audio.Voice)
}

func NewDriver() *Driver {
	return &Driver{voices: make(map[*audio.Voice]*voiceState)}
}

func (d *Driver) record(call string) {
	d.calls = append(d.calls, call)
}

// Calls returns the driver methods invoked so far, in order.
func (d *Driver) Calls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	copy(out, d.calls)
	return out
}

// Loaded returns the data loaded into v, or nil.
func (d *Driver) Loaded(v *audio.Voice) *audio.VoiceData {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.voices[v]; ok {
		return st.data
	}
	return nil
}

// SetPosition moves the simulated play position of a non-streaming voice,
// as if the device had played up to frames.
func (d *Driver) SetPosition(v *audio.Voice, frames int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.voices[v]; ok {
		st.position = frames
	}
}

func (d *Driver) Name() string { return "scripted" }

func (d *Driver) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Open")
	if d.FailOpen {
		return ErrScripted
	}
	return nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Close")
	return nil
}

func (d *Driver) AllocateVoice(v *audio.Voice, f *audio.VoiceFormat) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("AllocateVoice")
	if d.FailAllocate {
		return ErrScripted
	}
	if d.Coerce != nil {
		d.Coerce(f)
	}
	d.voices[v] = &voiceState{}
	return nil
}

func (d *Driver) DeallocateVoice(v *audio.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("DeallocateVoice")
	delete(d.voices, v)
}

func (d *Driver) LoadVoice(v *audio.Voice, data audio.VoiceData) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("LoadVoice")
	if d.FailNextLoad {
		d.FailNextLoad = false
		return ErrScripted
	}
	if d.FailLoad {
		return ErrScripted
	}
	d.voices[v].data = &data
	return nil
}

func (d *Driver) UnloadVoice(v *audio.Voice) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UnloadVoice")
	if st, ok := d.voices[v]; ok {
		st.data = nil
	}
}

func (d *Driver) StartVoice(v *audio.Voice) error {
	d.mu.Lock()
	d.record("StartVoice")
	if d.FailStart {
		d.mu.Unlock()
		return ErrScripted
	}
	d.voices[v].playing = true
	hook := d.OnStart
	d.mu.Unlock()

	if hook != nil {
		hook(v)
	}
	return nil
}

func (d *Driver) StopVoice(v *audio.Voice) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("StopVoice")
	if st, ok := d.voices[v]; ok {
		st.playing = false
	}
	return nil
}

func (d *Driver) VoiceIsPlaying(v *audio.Voice) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	st, ok := d.voices[v]
	return ok && st.playing
}

func (d *Driver) VoicePosition(v *audio.Voice) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if st, ok := d.voices[v]; ok {
		return st.position
	}
	return 0
}

func (d *Driver) SetVoicePosition(v *audio.Voice, frames int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("SetVoicePosition")
	if st, ok := d.voices[v]; ok {
		st.position = frames
	}
	return nil
}

// Feeder is an in-memory audio.Feeder over a PCM buffer.
type Feeder struct {
	mu        sync.Mutex
	format    audio.FeedFormat
	pcm       []byte
	pos       int // bytes
	loopStart int
	loopEnd   int
	closed    bool
	rewinds   int
}

// NewFeeder feeds pcm, which must hold whole frames of format.
func NewFeeder(format audio.FeedFormat, pcm []byte) *Feeder {
	return &Feeder{format: format, pcm: pcm, loopEnd: len(pcm)}
}

func (f *Feeder) frameSize() int {
	return f.format.Conf.Channels() * f.format.Depth.Size()
}

func (f *Feeder) Format() audio.FeedFormat { return f.format }

func (f *Feeder) Feed(buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fs := f.frameSize()
	avail := max(0, f.loopEnd-f.pos)
	n := min(len(buf)/fs*fs, avail)
	copy(buf, f.pcm[f.pos:f.pos+n])
	f.pos += n

	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

func (f *Feeder) Rewind() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rewinds++
	f.pos = f.loopStart
	return nil
}

func (f *Feeder) toBytes(d time.Duration) int {
	frames := int(d * time.Duration(f.format.Frequency) / time.Second)
	return min(frames*f.frameSize(), len(f.pcm))
}

func (f *Feeder) toDuration(bytes int) time.Duration {
	frames := bytes / f.frameSize()
	return time.Duration(frames) * time.Second / time.Duration(f.format.Frequency)
}

func (f *Feeder) Seek(pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pos = f.toBytes(pos)
	return nil
}

func (f *Feeder) Position() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.toDuration(f.pos)
}

func (f *Feeder) Length() time.Duration {
	return f.toDuration(len(f.pcm))
}

func (f *Feeder) SetLoop(start, end time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loopStart = f.toBytes(start)
	f.loopEnd = f.toBytes(end)
	return nil
}

func (f *Feeder) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Rewinds returns how often Rewind was called.
func (f *Feeder) Rewinds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rewinds
}

// Closed reports whether Close was called.
func (f *Feeder) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Ramp8U returns frames mono unsigned 8-bit samples counting up from 0,
// wrapping after 255.
func Ramp8U(frames int) []byte {
	out := make([]byte, frames)
	for i := range out {
		out[i] = byte(i)
	}
	return out
}

// Int16s encodes samples as little-endian int16 PCM.
func Int16s(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

// Float32s encodes samples as little-endian float32 PCM.
func Float32s(samples ...float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(s))
	}
	return out
}

// Constant16 returns frames frames of chans channels all set to v.
func Constant16(frames, chans int, v int16) []byte {
	samples := make([]int16, frames*chans)
	for i := range samples {
		samples[i] = v
	}
	return Int16s(samples...)
}

// DecodeInt16 decodes little-endian int16 PCM.
func DecodeInt16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

// DecodeFloat32 decodes little-endian float32 PCM.
func DecodeFloat32(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(pcm[i*4:]))
	}
	return out
}
