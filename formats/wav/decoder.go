// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	gowav "github.com/go-audio/wav"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/internal/feedutil"
)

// Decoder decodes WAV files into stream feeders.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Feeder, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := gowav.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotWavFile
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	if dec.WavAudioFormat != 1 {
		return nil, ErrUnsupportedFormat
	}

	bits := int(dec.BitDepth)
	depth, err := feedutil.IntDepth(bits, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}
	channels := int(dec.NumChans)
	conf, err := feedutil.Conf(channels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}

	format := audio.FeedFormat{Frequency: int(dec.SampleRate), Depth: depth, Conf: conf}
	total := dec.PCMSize / (channels * ((bits + 7) / 8))
	rewind := func() (feedutil.PCMReader, error) {
		return dec, dec.Rewind()
	}

	return feedutil.NewIntFeeder(dec, rewind, format, bits, total), nil
}
