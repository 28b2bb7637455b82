// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/driver/headless"
)

// ResampleToMono16 renders src offline as mono 16-bit PCM at targetRate.
//
// The audio is decoded into memory and played once through a cubic mono
// mixer on a headless voice, bufferSize frames per pass. Multi-channel
// input is folded down by the mixer's channel matrix, and the result is
// clipped to the int16 range.
//
// Example:
//
//	f, _ := wav.Decoder{}.Decode(file)
//	pcm16, rate, err := audmix.ResampleToMono16(f, 8000, 4096)
//	if err != nil {
//	    panic(err)
//	}
//	// pcm16 now contains mono 16-bit PCM at 8kHz
func ResampleToMono16(src audio.Feeder, targetRate, bufferSize int) ([]int16, int, error) {
	if targetRate <= 0 {
		return nil, targetRate, fmt.Errorf("invalid target rate %d", targetRate)
	}
	if bufferSize <= 0 {
		bufferSize = 4096
	}

	data, err := audio.ReadAll(src, bufferSize)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	if data.Frames() == 0 {
		return []int16{}, targetRate, nil
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	cfg := audio.DefaultConfig()
	cfg.Quality = audio.QualityCubic
	cfg.Logger = logger

	drv := headless.New(headless.Config{Logger: logger})
	sys, err := audio.NewSystem(drv, cfg)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	defer sys.Close()

	voice, err := sys.NewVoice(audio.VoiceFormat{Frequency: targetRate, Depth: audio.DepthInt16, Conf: audio.Conf1})
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	mixer, err := sys.NewMixer(targetRate, audio.DepthFloat32, audio.Conf1)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	spl, err := sys.NewSample(data)
	if err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	if err := mixer.AttachSample(spl); err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	if err := voice.AttachMixer(mixer); err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}
	if err := spl.SetPlaying(true); err != nil {
		return nil, targetRate, fmt.Errorf("%w", err)
	}

	want := int(int64(data.Frames()) * int64(targetRate) / int64(data.Frequency()))
	pcm16 := make([]int16, 0, want+bufferSize)
	for len(pcm16) < want && spl.Playing() {
		out, err := drv.Pump(voice, bufferSize)
		if err != nil {
			return nil, targetRate, fmt.Errorf("%w", err)
		}
		for i := 0; i+1 < len(out); i += 2 {
			pcm16 = append(pcm16, int16(uint16(out[i])|uint16(out[i+1])<<8))
		}
	}

	return pcm16[:min(len(pcm16), want)], targetRate, nil
}
