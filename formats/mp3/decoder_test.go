// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ik5/audmix/audio"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	*bytes.Reader
	sampleRate int
	failSeek   bool
}

func newMockReader(sampleRate int, samples ...int16) *mockMP3Reader {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(s))
	}
	return &mockMP3Reader{Reader: bytes.NewReader(pcm), sampleRate: sampleRate}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }
func (m *mockMP3Reader) Length() int64   { return m.Size() }

func (m *mockMP3Reader) Seek(offset int64, whence int) (int64, error) {
	if m.failSeek {
		return 0, io.ErrUnexpectedEOF
	}
	return m.Reader.Seek(offset, whence)
}

func decodeInt16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
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

	f := newFeeder(newMockReader(44100, make([]int16, 2*441)...))

	want := audio.FeedFormat{Frequency: 44100, Depth: audio.DepthInt16, Conf: audio.Conf2}
	if got := f.Format(); got != want {
		t.Errorf("Format() = %+v, want %+v", got, want)
	}
	if got := f.Length(); got != 10*time.Millisecond {
		t.Errorf("Length() = %v, want 10ms", got)
	}
}

func TestFeeder_Feed(t *testing.T) {
	t.Parallel()

	f := newFeeder(newMockReader(1000, 1, -1, 2, -2, 3, -3))

	buf := make([]byte, 2*frameSize)
	n, err := f.Feed(buf)
	if err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if got := decodeInt16(buf[:n]); len(got) != 4 || got[2] != 2 || got[3] != -2 {
		t.Errorf("Feed() = %v, want [1 -1 2 -2]", got)
	}

	n, err = f.Feed(buf)
	if !errors.Is(err, io.EOF) {
		t.Errorf("Feed() error = %v, want io.EOF", err)
	}
	if n != frameSize {
		t.Errorf("Feed() = %d, want %d", n, frameSize)
	}

	if n, err = f.Feed(buf); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("Feed() at end = %d, %v, want 0, io.EOF", n, err)
	}
}

func TestFeeder_SeekLoop(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 20)
	for i := range samples {
		samples[i] = int16(i / 2) // both channels carry the frame index
	}
	f := newFeeder(newMockReader(1000, samples...))

	if err := f.Seek(3 * time.Millisecond); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	buf := make([]byte, frameSize)
	if _, err := f.Feed(buf); err != nil {
		t.Fatalf("Feed() error = %v", err)
	}
	if got := decodeInt16(buf)[0]; got != 3 {
		t.Errorf("after Seek frame = %d, want 3", got)
	}

	if err := f.SetLoop(5*time.Millisecond, 7*time.Millisecond); err != nil {
		t.Fatalf("SetLoop() error = %v", err)
	}
	big := make([]byte, 8*frameSize)
	n, err := f.Feed(big)
	if !errors.Is(err, io.EOF) || n != 2*frameSize {
		t.Errorf("Feed() in loop = %d, %v, want %d, io.EOF", n, err, 2*frameSize)
	}
	if err := f.Rewind(); err != nil {
		t.Fatalf("Rewind() error = %v", err)
	}
	if got := f.Position(); got != 5*time.Millisecond {
		t.Errorf("Position() after Rewind = %v, want 5ms", got)
	}
}

func TestFeeder_SeekError(t *testing.T) {
	t.Parallel()

	m := newMockReader(1000, 1, 2, 3, 4)
	m.failSeek = true
	f := newFeeder(m)

	if err := f.Rewind(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("Rewind() error = %v, want %v", err, io.ErrUnexpectedEOF)
	}
}
