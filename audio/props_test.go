// SPDX-License-Identifier: EPL-2.0

package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ik5/audmix/audio"
)

func TestProps_Sample(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	_, mixer := floatTree(t, sys, audio.Conf1)
	spl := newSample(t, sys, audio.DepthInt16, audio.Conf1, ramp16(10))
	require.NoError(t, mixer.AttachSample(spl))

	n, err := audio.GetLong(spl, audio.PropLength)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	require.NoError(t, audio.SetLong(spl, audio.PropPosition, 3))
	n, err = audio.GetLong(spl, audio.PropPosition)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, audio.SetFloat(spl, audio.PropGain, 0.5))
	g, err := audio.GetFloat(spl, audio.PropGain)
	require.NoError(t, err)
	assert.Equal(t, float32(0.5), g)

	require.NoError(t, audio.SetEnum(spl, audio.PropPlayMode, int(audio.PlayModeLoop)))
	e, err := audio.GetEnum(spl, audio.PropPlayMode)
	require.NoError(t, err)
	assert.Equal(t, int(audio.PlayModeLoop), e)

	e, err = audio.GetEnum(spl, audio.PropDepth)
	require.NoError(t, err)
	assert.Equal(t, int(audio.DepthInt16), e)

	require.NoError(t, audio.SetBool(spl, audio.PropPlaying, true))
	b, err := audio.GetBool(spl, audio.PropPlaying)
	require.NoError(t, err)
	assert.True(t, b)

	b, err = audio.GetBool(spl, audio.PropAttached)
	require.NoError(t, err)
	assert.True(t, b)

	assert.ErrorIs(t, audio.SetBool(spl, audio.PropAttached, true), audio.ErrUnsupportedProp)
	require.NoError(t, audio.SetBool(spl, audio.PropAttached, false))
	assert.False(t, spl.Attached())
}

func TestProps_Mixer(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	mixer, err := sys.NewMixer(testFreq, audio.DepthFloat32, audio.Conf2)
	require.NoError(t, err)

	q, err := audio.GetEnum(mixer, audio.PropQuality)
	require.NoError(t, err)
	assert.Equal(t, int(audio.QualityLinear), q)

	require.NoError(t, audio.SetEnum(mixer, audio.PropQuality, int(audio.QualityCubic)))
	assert.Equal(t, audio.QualityCubic, mixer.Quality())

	require.NoError(t, audio.SetLong(mixer, audio.PropFrequency, 22050))
	f, err := audio.GetLong(mixer, audio.PropFrequency)
	require.NoError(t, err)
	assert.Equal(t, 22050, f)

	c, err := audio.GetLong(mixer, audio.PropChannels)
	require.NoError(t, err)
	assert.Equal(t, 2, c)

	require.NoError(t, audio.SetFloat(mixer, audio.PropGain, 0.25))
	assert.Equal(t, float32(0.25), mixer.Gain())

	_, err = audio.GetFloat(mixer, audio.PropPan)
	assert.ErrorIs(t, err, audio.ErrUnsupportedProp)
	assert.ErrorIs(t, err, audio.ErrInvalidParam)

	_, err = audio.GetLong(mixer, audio.PropPosition)
	assert.ErrorIs(t, err, audio.ErrUnsupportedProp)
}

func TestProps_StreamFragments(t *testing.T) {
	t.Parallel()

	sys, _ := newSystem(t)
	s := newStream(t, sys, 2, 4)

	n, err := audio.GetLong(s, audio.PropFragments)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ptr, err := audio.GetPtr(s, audio.PropFragment)
	require.NoError(t, err)
	frag, ok := ptr.([]byte)
	require.True(t, ok)
	assert.Len(t, frag, 8)

	n, err = audio.GetLong(s, audio.PropAvailableFragments)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, audio.SetPtr(s, audio.PropFragment, frag))
	assert.Equal(t, 1, s.PendingFragments())
	assert.ErrorIs(t, audio.SetPtr(s, audio.PropFragment, "frag"), audio.ErrInvalidParam)

	_, _ = audio.GetPtr(s, audio.PropFragment)
	ptr, err = audio.GetPtr(s, audio.PropFragment)
	require.NoError(t, err)
	assert.Nil(t, ptr)

	_, err = audio.GetPtr(sys, audio.PropFragment)
	assert.ErrorIs(t, err, audio.ErrUnsupportedProp)
}

func TestProperty_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "gain", audio.PropGain.String())
	assert.Equal(t, "available fragments", audio.PropAvailableFragments.String())
	assert.Equal(t, "invalid", audio.Property(99).String())
}
