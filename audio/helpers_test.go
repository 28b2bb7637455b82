// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
)

const testFreq = 8000

func quietConfig() *audio.Config {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := audio.DefaultConfig()
	cfg.Logger = logger
	cfg.DrainInterval = time.Millisecond
	return cfg
}

func newSystem(t testing.TB, cfg ...*audio.Config) (*audio.System, *audiotest.Driver) {
	t.Helper()

	c := quietConfig()
	if len(cfg) > 0 {
		c = cfg[0]
	}

	drv := audiotest.NewDriver()
	sys, err := audio.NewSystem(drv, c)
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })
	return sys, drv
}

// floatTree returns a float32 voice with a mixer attached, both in conf at
// testFreq.
func floatTree(t testing.TB, sys *audio.System, conf audio.ChannelConf) (*audio.Voice, *audio.Mixer) {
	t.Helper()

	voice, err := sys.NewVoice(audio.VoiceFormat{Frequency: testFreq, Depth: audio.DepthFloat32, Conf: conf})
	require.NoError(t, err)
	mixer, err := sys.NewMixer(testFreq, audio.DepthFloat32, conf)
	require.NoError(t, err)
	require.NoError(t, voice.AttachMixer(mixer))
	return voice, mixer
}

func newSample(t testing.TB, sys *audio.System, depth audio.Depth, conf audio.ChannelConf, pcm []byte) *audio.Sample {
	t.Helper()

	frames := len(pcm) / (conf.Channels() * depth.Size())
	data, err := audio.NewSampleData(audio.NewBuffer(pcm, audio.Borrowed), frames, testFreq, depth, conf)
	require.NoError(t, err)
	spl, err := sys.NewSample(data)
	require.NoError(t, err)
	return spl
}

func constantFloats(frames int, v float32) []byte {
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = v
	}
	return audiotest.Float32s(samples...)
}

func ramp16(frames int) []byte {
	samples := make([]int16, frames)
	for i := range samples {
		samples[i] = int16(i * 1000)
	}
	return audiotest.Int16s(samples...)
}
