// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/internal/feedutil"
)

// open positions a new go-audio decoder at the start of rs.
func open(rs io.ReadSeeker) (*aiff.Decoder, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()
	return dec, nil
}

// Decoder decodes AIFF files into stream feeders.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Feeder, error) {
	// go-audio requires io.ReadSeeker
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading aiff data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec, err := open(rs)
	if err != nil {
		return nil, err
	}

	format := dec.Format()
	if format == nil {
		return nil, ErrUnsupportedAiffLayout
	}

	// AIFF stores 8-bit samples signed
	bits := int(dec.BitDepth)
	depth, err := feedutil.IntDepth(bits, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedBitDepth, err)
	}
	conf, err := feedutil.Conf(format.NumChannels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedAiffLayout, err)
	}

	rewind := func() (feedutil.PCMReader, error) {
		return open(rs)
	}

	return feedutil.NewIntFeeder(
		dec, rewind,
		audio.FeedFormat{Frequency: format.SampleRate, Depth: depth, Conf: conf},
		bits, int(dec.NumSampleFrames),
	), nil
}
