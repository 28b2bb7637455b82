// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// Recorder writes voice output as an integer PCM WAV file: 24-bit for
// 24-bit voices, 16-bit for everything else. The sizes in the header are
// patched on Close, so the destination must be seekable.
type Recorder struct {
	enc      *gowav.Encoder
	depth    audio.Depth
	bits     int
	channels int
	frames   int
	ints     *goaudio.IntBuffer
}

// NewRecorder records PCM in format f to w.
func NewRecorder(w io.WriteSeeker, f audio.VoiceFormat) *Recorder {
	channels := f.Conf.Channels()
	bits := 16
	if f.Depth.Base() == audio.DepthInt24 {
		bits = 24
	}
	return &Recorder{
		enc:      gowav.NewEncoder(w, f.Frequency, bits, channels, 1),
		depth:    f.Depth,
		bits:     bits,
		channels: channels,
		ints: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: f.Frequency},
			SourceBitDepth: bits,
		},
	}
}

// Write converts whole frames of pcm and appends them to the file.
func (r *Recorder) Write(pcm []byte) (int, error) {
	samples := len(pcm) / r.depth.Size()
	samples -= samples % r.channels
	if samples == 0 {
		return 0, nil
	}

	if cap(r.ints.Data) < samples {
		r.ints.Data = make([]int, samples)
	}
	r.ints.Data = r.ints.Data[:samples]
	for i := range samples {
		r.ints.Data[i] = utils.FloatToInt(r.depth.Decode(pcm, i), r.bits)
	}

	if err := r.enc.Write(r.ints); err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	r.frames += samples / r.channels
	return samples * r.depth.Size(), nil
}

// Frames is the number of frames written so far.
func (r *Recorder) Frames() int { return r.frames }

// Close finalizes the WAV header. It does not close the underlying writer.
func (r *Recorder) Close() error {
	if err := r.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
