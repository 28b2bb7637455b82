// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/ik5/audmix/audio"
)

// mockOggVorbisReader simulates the oggvorbis.Reader for testing. Like the
// real reader it returns at most one packet of values per Read.
type mockOggVorbisReader struct {
	sampleRate   int
	channels     int
	samples      []float32
	offset       int
	packet       int
	returnErrors bool
}

func (m *mockOggVorbisReader) SampleRate() int { return m.sampleRate }
func (m *mockOggVorbisReader) Channels() int   { return m.channels }
func (m *mockOggVorbisReader) Length() int64   { return int64(len(m.samples) / m.channels) }

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.returnErrors {
		return 0, io.ErrUnexpectedEOF
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := min(len(buf), len(m.samples)-m.offset)
	if m.packet > 0 {
		n = min(n, m.packet)
	}
	copy(buf, m.samples[m.offset:m.offset+n])
	m.offset += n
	return n, nil
}

func (m *mockOggVorbisReader) SetPosition(pos int64) error {
	if m.returnErrors {
		return io.ErrUnexpectedEOF
	}
	m.offset = int(pos) * m.channels
	return nil
}

func ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i) / 100
	}
	return out
}

func decodeFloat32(pcm []byte) []float32 {
	out := make([]float32, len(pcm)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(pcm[i*4:]))
	}
	return out
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not Ogg Vorbis data")))
	if err == nil {
		t.Error("Decode() error = nil, want error for invalid data")
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	if _, err := (Decoder{}).Decode(bytes.NewReader(nil)); err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestFeeder_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		channels int
		conf     audio.ChannelConf
	}{
		{1, audio.Conf1},
		{2, audio.Conf2},
		{6, audio.Conf51},
	}

	for _, tt := range tests {
		f, err := newFeeder(&mockOggVorbisReader{sampleRate: 48000, channels: tt.channels, samples: make([]float32, 480*tt.channels)})
		if err != nil {
			t.Fatalf("newFeeder(%d channels) error = %v", tt.channels, err)
		}
		want := audio.FeedFormat{Frequency: 48000, Depth: audio.DepthFloat32, Conf: tt.conf}
		if got := f.Format(); got != want {
			t.Errorf("Format() = %+v, want %+v", got, want)
		}
		if got := f.Length(); got != 10*time.Millisecond {
			t.Errorf("Length() = %v, want 10ms", got)
		}
	}

	if _, err := newFeeder(&mockOggVorbisReader{sampleRate: 48000, channels: 5}); err == nil {
		t.Error("newFeeder(5 channels) error = nil, want error")
	}
}

func TestFeeder_FeedAcrossPackets(t *testing.T) {
	t.Parallel()

	samples := ramp(20)
	f, err := newFeeder(&mockOggVorbisReader{sampleRate: 1000, channels: 2, samples: samples, packet: 3})
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 6*2*4)
	n, err := f.Feed(buf)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if n != len(buf) {
		t.Fatalf("Feed() = %d, want %d", n, len(buf))
	}
	got := decodeFloat32(buf)
	for i := range got {
		if got[i] != samples[i] {
			t.Errorf("value %d = %v, want %v", i, got[i], samples[i])
		}
	}

	n, err = f.Feed(buf)
	if !errors.Is(err, io.EOF) {
		t.Errorf("Feed() error = %v, want io.EOF", err)
	}
	if n != 8*4 {
		t.Errorf("Feed() = %d, want %d", n, 8*4)
	}
}

func TestFeeder_SeekLoop(t *testing.T) {
	t.Parallel()

	samples := ramp(100)
	f, err := newFeeder(&mockOggVorbisReader{sampleRate: 1000, channels: 1, samples: samples})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.Seek(40 * time.Millisecond); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	buf := make([]byte, 4)
	if _, err := f.Feed(buf); err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if got := decodeFloat32(buf)[0]; got != samples[40] {
		t.Errorf("after Seek value = %v, want %v", got, samples[40])
	}

	if err := f.SetLoop(10*time.Millisecond, 20*time.Millisecond); err != nil {
		t.Fatalf("SetLoop() error = %v", err)
	}
	big := make([]byte, 50*4)
	n, err := f.Feed(big)
	if !errors.Is(err, io.EOF) || n != 10*4 {
		t.Errorf("Feed() in loop = %d, %v, want %d, io.EOF", n, err, 10*4)
	}
	if got := decodeFloat32(big)[0]; got != samples[10] {
		t.Errorf("loop start value = %v, want %v", got, samples[10])
	}
}

func TestFeeder_ReadError(t *testing.T) {
	t.Parallel()

	f, err := newFeeder(&mockOggVorbisReader{sampleRate: 1000, channels: 1, samples: ramp(10)})
	if err != nil {
		t.Fatal(err)
	}
	f.dec.(*mockOggVorbisReader).returnErrors = true

	if _, err := f.Feed(make([]byte, 16)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Feed() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
	if err := f.Rewind(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Rewind() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}

func BenchmarkFeeder_Feed(b *testing.B) {
	samples := ramp(2 * 48000)
	buf := make([]byte, 1024*2*4)

	b.ReportAllocs()
	for b.Loop() {
		f, err := newFeeder(&mockOggVorbisReader{sampleRate: 48000, channels: 2, samples: samples, packet: 512})
		if err != nil {
			b.Fatal(err)
		}
		for {
			if _, err := f.Feed(buf); err != nil {
				break
			}
		}
	}
}
