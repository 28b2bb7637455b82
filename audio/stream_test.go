// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
)

func newStream(t *testing.T, sys *audio.System, fragments, frames int) *audio.Stream {
	t.Helper()

	s, err := sys.NewStream(fragments, frames, testFreq, audio.DepthInt16, audio.Conf1)
	require.NoError(t, err)
	return s
}

func fill(t *testing.T, s *audio.Stream, v int16) []byte {
	t.Helper()

	frag := s.Fragment()
	require.NotNil(t, frag)
	copy(frag, audiotest.Constant16(len(frag)/2, 1, v))
	require.NoError(t, s.SetFragment(frag))
	return frag
}

func TestStream_FragmentsPlayInOrder(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	s := newStream(t, sys, 2, 4)
	assert.Equal(t, 2, s.AvailableFragments())

	a := fill(t, s, 1000)
	fill(t, s, 2000)
	assert.Nil(t, s.Fragment())
	assert.Equal(t, 2, s.PendingFragments())

	require.NoError(t, mixer.AttachStream(s))

	out, n := voice.Update(8)
	require.Equal(t, 8, n)
	got := audiotest.DecodeFloat32(out)
	x := audio.DepthInt16.Decode(audiotest.Int16s(1000), 0)
	y := audio.DepthInt16.Decode(audiotest.Int16s(2000), 0)
	for i := range 4 {
		assert.InDelta(t, x, got[i], 1e-6, "frame %d", i)
		assert.InDelta(t, y, got[4+i], 1e-6, "frame %d", 4+i)
	}

	// A has been played and is waiting to be refilled; B is still current.
	assert.Equal(t, 1, s.AvailableFragments())
	select {
	case <-s.Available():
	default:
		t.Error("no availability signal after a fragment drained")
	}
	reclaimed := s.Fragment()
	require.NotNil(t, reclaimed)
	assert.Same(t, &a[0], &reclaimed[0])
	assert.True(t, s.Playing())
}

func TestStream_StarvesWithoutStopping(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	s := newStream(t, sys, 2, 4)
	require.NoError(t, mixer.AttachStream(s))

	out, _ := voice.Update(4)
	for _, v := range audiotest.DecodeFloat32(out) {
		assert.Zero(t, v)
	}
	assert.True(t, s.Playing(), "an empty queue is an underrun, not the end")

	fill(t, s, 3000)
	out, _ = voice.Update(4)
	assert.NotZero(t, audiotest.DecodeFloat32(out)[0])
}

func TestStream_PassthroughToVoice(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, err := sys.NewVoice(audio.VoiceFormat{Frequency: testFreq, Depth: audio.DepthInt16, Conf: audio.Conf1})
	require.NoError(t, err)

	s := newStream(t, sys, 2, 4)
	frag := fill(t, s, 1234)
	require.NoError(t, voice.AttachStream(s))
	assert.True(t, voice.Streaming())

	out, n := voice.Update(10)
	require.Equal(t, 4, n, "one fragment at most per pull")
	assert.Equal(t, frag, out)

	out, n = voice.Update(10)
	assert.Nil(t, out)
	assert.Zero(t, n)

	assert.ErrorIs(t, s.SetGain(0.5), audio.ErrInvalidObject)
}

func TestStream_FragmentErrors(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	s := newStream(t, sys, 2, 4)

	assert.ErrorIs(t, s.SetFragment(make([]byte, 8)), audio.ErrUnknownFragment)
	assert.ErrorIs(t, s.SetFragment(nil), audio.ErrInvalidParam)

	a := fill(t, s, 1)
	fill(t, s, 2)
	assert.ErrorIs(t, s.SetFragment(a), audio.ErrFragmentsFull)

	_, err := sys.NewStream(0, 4, testFreq, audio.DepthInt16, audio.Conf1)
	assert.ErrorIs(t, err, audio.ErrInvalidParam)
	_, err = sys.NewStream(2, 4, testFreq, audio.DepthInt16, audio.ChannelConf(3))
	assert.ErrorIs(t, err, audio.ErrInvalidParam)

	assert.ErrorIs(t, s.SetPlayMode(audio.PlayModeBidir), audio.ErrInvalidParam)
	assert.ErrorIs(t, s.Rewind(), audio.ErrNoFeeder)
	_, err = s.Position()
	assert.ErrorIs(t, err, audio.ErrNoFeeder)
}

func feederOf(frames int) *audiotest.Feeder {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16((i + 1) * 1000)
	}
	format := audio.FeedFormat{Frequency: testFreq, Depth: audio.DepthInt16, Conf: audio.Conf1}
	return audiotest.NewFeeder(format, audiotest.Int16s(samples...))
}

func expectFrames(t *testing.T, out []byte, values ...int16) {
	t.Helper()

	got := audiotest.DecodeFloat32(out)
	require.Len(t, got, len(values))
	for i, v := range values {
		want := audio.DepthInt16.Decode(audiotest.Int16s(v), 0)
		assert.InDelta(t, want, got[i], 1e-6, "frame %d", i)
	}
}

func TestStream_FeederLoops(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	f := feederOf(6)
	s := newStream(t, sys, 2, 4)
	require.NoError(t, s.SetPlayMode(audio.PlayModeLoop))
	require.NoError(t, s.SetFeeder(f))
	require.Eventually(t, func() bool { return s.PendingFragments() == 2 }, time.Second, time.Millisecond)

	assert.Equal(t, 1, f.Rewinds())
	assert.False(t, s.Draining())

	require.NoError(t, mixer.AttachStream(s))
	out, _ := voice.Update(8)
	expectFrames(t, out, 1000, 2000, 3000, 4000, 5000, 6000, 1000, 2000)

	length, err := s.Length()
	require.NoError(t, err)
	assert.Equal(t, 750*time.Microsecond, length)

	require.NoError(t, s.Destroy())
	assert.True(t, f.Closed())
}

func TestStream_FeederPlaysOnce(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	f := feederOf(6)
	s := newStream(t, sys, 2, 4)
	require.NoError(t, s.SetFeeder(f))
	require.Eventually(t, func() bool { return s.PendingFragments() == 2 }, time.Second, time.Millisecond)
	assert.True(t, s.Draining())

	require.NoError(t, mixer.AttachStream(s))
	out, _ := voice.Update(8)
	expectFrames(t, out, 1000, 2000, 3000, 4000, 5000, 6000, 0, 0)

	voice.Update(1)
	assert.False(t, s.Playing())
	assert.Zero(t, f.Rewinds())

	require.NoError(t, s.Destroy())
	assert.True(t, f.Closed())
}

func TestStream_SetFeederFormatMismatch(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	s, err := sys.NewStream(2, 4, testFreq*2, audio.DepthInt16, audio.Conf1)
	require.NoError(t, err)

	assert.ErrorIs(t, s.SetFeeder(feederOf(4)), audio.ErrFormatMismatch)
}

func TestStream_RewindRestartsFeeding(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	f := feederOf(4)
	s := newStream(t, sys, 2, 4)
	require.NoError(t, s.SetFeeder(f))
	require.Eventually(t, func() bool { return s.PendingFragments() == 2 }, time.Second, time.Millisecond)
	require.NoError(t, mixer.AttachStream(s))

	// The first fragment holds all the data; the second is the silent
	// tail of the exhausted feeder.
	out, _ := voice.Update(4)
	expectFrames(t, out, 1000, 2000, 3000, 4000)

	require.NoError(t, s.Rewind())
	assert.Equal(t, 1, f.Rewinds())

	voice.Update(4)
	require.Eventually(t, func() bool { return s.PendingFragments() == 2 }, time.Second, time.Millisecond)
	out, _ = voice.Update(4)
	expectFrames(t, out, 1000, 2000, 3000, 4000)

	require.NoError(t, s.Destroy())
}

func TestStream_Drain(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	voice, mixer := floatTree(t, sys, audio.Conf1)

	s := newStream(t, sys, 2, 4)
	fill(t, s, 1000)
	require.NoError(t, mixer.AttachStream(s))

	errc := make(chan error, 1)
	go func() { errc <- s.Drain(context.Background()) }()
	require.Eventually(t, s.Draining, time.Second, time.Millisecond)

	voice.Update(4)
	voice.Update(1)

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Drain() did not return after the queue emptied")
	}
	assert.False(t, s.Playing())
	assert.False(t, s.Draining())
}

func TestStream_DrainCancelled(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	_, mixer := floatTree(t, sys, audio.Conf1)

	s := newStream(t, sys, 2, 4)
	fill(t, s, 1000)
	require.NoError(t, mixer.AttachStream(s))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Drain(ctx), context.DeadlineExceeded)
	assert.True(t, s.Playing())
}

func TestStream_DrainDetached(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	s := newStream(t, sys, 2, 4)
	fill(t, s, 1000)

	require.NoError(t, s.Drain(context.Background()))
	assert.False(t, s.Playing())
}
