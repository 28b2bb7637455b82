// SPDX-License-Identifier: EPL-2.0

package feedutil

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
)

// mockPCMReader serves samples from a slice.
type mockPCMReader struct {
	data []int
	pos  int
	err  error
}

func (m *mockPCMReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	n := copy(buf.Data, m.data[m.pos:])
	m.pos += n
	return n, nil
}

func newMockFeeder(data []int, format audio.FeedFormat) (*IntFeeder, *int) {
	r := &mockPCMReader{data: data}
	rewinds := new(int)
	rewind := func() (PCMReader, error) {
		*rewinds++
		r.pos = 0
		return r, nil
	}
	total := len(data) / format.Conf.Channels()
	return NewIntFeeder(r, rewind, format, 16, total), rewinds
}

func int16s(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	return out
}

func TestIntFeederFeed(t *testing.T) {
	t.Parallel()

	format := audio.FeedFormat{Frequency: 1000, Depth: audio.DepthInt16, Conf: audio.Conf2}
	f, _ := newMockFeeder([]int{1, -1, 2, -2, 3, -3}, format)

	buf := make([]byte, 2*4)
	n, err := f.Feed(buf)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
	assert.Equal(t, []int16{1, -1, 2, -2}, int16s(buf))
	assert.Equal(t, 2*time.Millisecond, f.Position())

	n, err = f.Feed(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 4, n)

	n, err = f.Feed(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, n)
}

func TestIntFeederSeek(t *testing.T) {
	t.Parallel()

	format := audio.FeedFormat{Frequency: 1000, Depth: audio.DepthInt16, Conf: audio.Conf1}
	data := make([]int, 10000)
	for i := range data {
		data[i] = i % 30000
	}
	f, rewinds := newMockFeeder(data, format)

	require.NoError(t, f.Seek(5*time.Second))
	assert.Equal(t, 1, *rewinds)
	assert.Equal(t, 5*time.Second, f.Position())

	buf := make([]byte, 2)
	_, err := f.Feed(buf)
	require.NoError(t, err)
	assert.Equal(t, int16(5000), int16s(buf)[0])

	// past the end clamps to the end
	require.NoError(t, f.Seek(time.Hour))
	assert.Equal(t, f.Length(), f.Position())
}

func TestIntFeederLoop(t *testing.T) {
	t.Parallel()

	format := audio.FeedFormat{Frequency: 1000, Depth: audio.DepthInt16, Conf: audio.Conf1}
	f, _ := newMockFeeder([]int{0, 1, 2, 3, 4, 5, 6, 7}, format)

	require.NoError(t, f.SetLoop(2*time.Millisecond, 5*time.Millisecond))
	assert.Equal(t, 2*time.Millisecond, f.Position())

	buf := make([]byte, 2*8)
	n, err := f.Feed(buf)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []int16{2, 3, 4}, int16s(buf[:n]))

	require.NoError(t, f.Rewind())
	n, _ = f.Feed(buf)
	assert.Equal(t, []int16{2, 3, 4}, int16s(buf[:n]))
}

func TestIntFeederErrors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("disk on fire")
	r := &mockPCMReader{err: readErr}
	format := audio.FeedFormat{Frequency: 8000, Depth: audio.DepthInt16, Conf: audio.Conf1}

	f := NewIntFeeder(r, func() (PCMReader, error) { return nil, readErr }, format, 16, 100)

	_, err := f.Feed(make([]byte, 8))
	require.ErrorIs(t, err, readErr)
	assert.ErrorIs(t, f.Rewind(), readErr)
}

func TestIntDepth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits      int
		unsigned8 bool
		want      audio.Depth
	}{
		{8, true, audio.DepthUint8},
		{8, false, audio.DepthInt8},
		{16, false, audio.DepthInt16},
		{24, true, audio.DepthInt24},
		{32, false, audio.DepthFloat32},
	}
	for _, tt := range tests {
		got, err := IntDepth(tt.bits, tt.unsigned8)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "bits %d", tt.bits)
	}

	_, err := IntDepth(12, false)
	assert.ErrorIs(t, err, ErrBitDepth)
}

func TestConf(t *testing.T) {
	t.Parallel()

	for ch, want := range map[int]audio.ChannelConf{1: audio.Conf1, 2: audio.Conf2, 6: audio.Conf51, 8: audio.Conf71} {
		got, err := Conf(ch)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Conf(5)
	assert.ErrorIs(t, err, ErrChannels)
}

func TestPutInts(t *testing.T) {
	t.Parallel()

	buf := make([]byte, 8)

	PutInts(buf, audio.DepthInt24, []int{-2, 3})
	assert.Equal(t, int32(-2), int32(binary.LittleEndian.Uint32(buf)))
	assert.Equal(t, int32(3), int32(binary.LittleEndian.Uint32(buf[4:])))

	PutInts(buf, audio.DepthFloat32, []int{1 << 30, -(1 << 31)})
	assert.InDelta(t, 0.5, math.Float32frombits(binary.LittleEndian.Uint32(buf)), 1e-9)
	assert.InDelta(t, -1.0, math.Float32frombits(binary.LittleEndian.Uint32(buf[4:])), 1e-9)

	PutInts(buf, audio.DepthInt8, []int{-1, 5})
	assert.Equal(t, []byte{0xFF, 5}, buf[:2])
}
