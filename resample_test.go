// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"math"
	"testing"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
)

func constantFeeder(freq, frames int, conf audio.ChannelConf, v int16) audio.Feeder {
	format := audio.FeedFormat{Frequency: freq, Depth: audio.DepthInt16, Conf: conf}
	return audiotest.NewFeeder(format, audiotest.Constant16(frames, conf.Channels(), v))
}

func TestResampleToMono16_AlreadyMono(t *testing.T) {
	t.Parallel()

	src := constantFeeder(16000, 16000, audio.Conf1, 16384)

	pcm16, rate, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("ResampleToMono16() rate = %d, want 8000", rate)
	}

	expected := 8000
	tolerance := 200
	if len(pcm16) < expected-tolerance || len(pcm16) > expected+tolerance {
		t.Errorf("ResampleToMono16() got %d samples, want ≈%d (±%d)",
			len(pcm16), expected, tolerance)
	}

	// constant input stays constant through the cubic sampler
	for i, s := range pcm16 {
		if math.Abs(float64(s)-16383) > 50 {
			t.Errorf("pcm16[%d] = %d, want ≈16383", i, s)
			break
		}
	}
}

func TestResampleToMono16_StereoDownmix(t *testing.T) {
	t.Parallel()

	src := constantFeeder(44100, 44100, audio.Conf2, 8192)

	pcm16, _, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if len(pcm16) < 7800 || len(pcm16) > 8000 {
		t.Errorf("ResampleToMono16() got %d samples, want ≈8000", len(pcm16))
	}

	// both channels fold in at 1/√2
	want := 2 * 8192 / math.Sqrt2
	for i, s := range pcm16 {
		if math.Abs(float64(s)-want) > 50 {
			t.Errorf("pcm16[%d] = %d, want ≈%.0f", i, s, want)
			break
		}
	}
}

func TestResampleToMono16_Silence(t *testing.T) {
	t.Parallel()

	src := constantFeeder(44100, 44100, audio.Conf2, 0)

	pcm16, _, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	for i, s := range pcm16 {
		if s != 0 {
			t.Errorf("pcm16[%d] = %d, want 0 (silence)", i, s)
			break
		}
	}
}

func TestResampleToMono16_EmptySource(t *testing.T) {
	t.Parallel()

	src := constantFeeder(44100, 0, audio.Conf2, 0)

	pcm16, rate, err := ResampleToMono16(src, 8000, 4096)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if rate != 8000 {
		t.Errorf("ResampleToMono16() rate = %d, want 8000", rate)
	}
	if len(pcm16) != 0 {
		t.Errorf("ResampleToMono16() got %d samples, want 0", len(pcm16))
	}
}

func TestResampleToMono16_VariousRates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		srcRate    int
		targetRate int
	}{
		{"44.1kHz to 8kHz", 44100, 8000},
		{"48kHz to 16kHz", 48000, 16000},
		{"8kHz to 16kHz (upsample)", 8000, 16000},
		{"44.1kHz to 44.1kHz (no resample)", 44100, 44100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// half a second of audio
			src := constantFeeder(tt.srcRate, tt.srcRate/2, audio.Conf1, 1000)

			pcm16, rate, err := ResampleToMono16(src, tt.targetRate, 1024)
			if err != nil {
				t.Fatalf("ResampleToMono16() error = %v", err)
			}
			if rate != tt.targetRate {
				t.Errorf("rate = %d, want %d", rate, tt.targetRate)
			}

			expected := tt.targetRate / 2
			tolerance := expected / 20
			if len(pcm16) < expected-tolerance || len(pcm16) > expected {
				t.Errorf("got %d samples, want ≈%d (±%d)", len(pcm16), expected, tolerance)
			}
		})
	}
}

func TestResampleToMono16_Clamping(t *testing.T) {
	t.Parallel()

	// a full scale stereo pair sums above full scale in mono
	src := constantFeeder(8000, 800, audio.Conf2, 32767)

	pcm16, _, err := ResampleToMono16(src, 8000, 256)
	if err != nil {
		t.Fatalf("ResampleToMono16() error = %v", err)
	}
	if len(pcm16) == 0 {
		t.Fatal("ResampleToMono16() returned no samples")
	}
	for i, s := range pcm16 {
		if s != 32767 {
			t.Errorf("pcm16[%d] = %d, want 32767 (clipped)", i, s)
			break
		}
	}
}

func TestResampleToMono16_InvalidRate(t *testing.T) {
	t.Parallel()

	if _, _, err := ResampleToMono16(constantFeeder(8000, 10, audio.Conf1, 0), 0, 256); err == nil {
		t.Error("ResampleToMono16() error = nil, want error for zero rate")
	}
}

func TestRegisterFormats(t *testing.T) {
	t.Parallel()

	r := audio.NewRegistry()
	RegisterFormats(r)

	for _, path := range []string{"a.wav", "b.WAV", "c.aiff", "d.aif", "e.mp3", "f.ogg", "g.oga"} {
		if _, err := r.ForPath(path); err != nil {
			t.Errorf("ForPath(%q) error = %v", path, err)
		}
	}
	if _, err := r.ForPath("h.flac"); err == nil {
		t.Error("ForPath(\"h.flac\") error = nil, want error")
	}
}

func BenchmarkResampleToMono16(b *testing.B) {
	pcm := audiotest.Constant16(44100, 2, 1000)
	format := audio.FeedFormat{Frequency: 44100, Depth: audio.DepthInt16, Conf: audio.Conf2}

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = ResampleToMono16(audiotest.NewFeeder(format, pcm), 8000, 4096)
	}
}

func BenchmarkResampleToMono16_Upsample(b *testing.B) {
	pcm := audiotest.Constant16(8000, 1, 1000)
	format := audio.FeedFormat{Frequency: 8000, Depth: audio.DepthInt16, Conf: audio.Conf1}

	b.ReportAllocs()
	for b.Loop() {
		_, _, _ = ResampleToMono16(audiotest.NewFeeder(format, pcm), 44100, 4096)
	}
}
