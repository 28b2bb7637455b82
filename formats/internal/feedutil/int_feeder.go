// SPDX-License-Identifier: EPL-2.0

package feedutil

import (
	"errors"
	"fmt"
	"io"
	"time"

	goaudio "github.com/go-audio/audio"

	"github.com/ik5/audmix/audio"
)

// PCMReader is the part of the go-audio decoders an IntFeeder reads from.
type PCMReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// RewindFunc positions the source at its first frame and returns the
// reader to continue with, which may be a new one.
type RewindFunc func() (PCMReader, error)

// IntFeeder is an audio.Feeder over a go-audio integer PCM decoder.
type IntFeeder struct {
	dec      PCMReader
	rewind   RewindFunc
	format   audio.FeedFormat
	bits     int
	channels int
	win      Window
	ints     *goaudio.IntBuffer
}

// NewIntFeeder feeds total frames of bits-sized samples from dec in
// format.
func NewIntFeeder(dec PCMReader, rewind RewindFunc, format audio.FeedFormat, bits, total int) *IntFeeder {
	channels := format.Conf.Channels()
	return &IntFeeder{
		dec:      dec,
		rewind:   rewind,
		format:   format,
		bits:     bits,
		channels: channels,
		win:      NewWindow(format.Frequency, total),
	}
}

func (f *IntFeeder) Format() audio.FeedFormat { return f.format }
func (f *IntFeeder) Close() error             { return nil }

func (f *IntFeeder) frameSize() int { return f.channels * f.format.Depth.Size() }

func (f *IntFeeder) buffer(samples int) *goaudio.IntBuffer {
	if f.ints == nil || cap(f.ints.Data) < samples {
		f.ints = &goaudio.IntBuffer{
			Data:           make([]int, samples),
			Format:         &goaudio.Format{NumChannels: f.channels, SampleRate: f.format.Frequency},
			SourceBitDepth: f.bits,
		}
	}
	f.ints.Data = f.ints.Data[:samples]
	return f.ints
}

// read decodes up to frames frames into the scratch buffer.
func (f *IntFeeder) read(frames int) ([]int, error) {
	ints := f.buffer(frames * f.channels)
	n, err := f.dec.PCMBuffer(ints)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w", err)
	}
	n -= n % f.channels
	f.win.Advance(n / f.channels)
	return ints.Data[:n], nil
}

func (f *IntFeeder) Feed(buf []byte) (int, error) {
	frames := f.win.Limit(len(buf) / f.frameSize())
	if frames == 0 {
		return 0, io.EOF
	}

	samples, err := f.read(frames)
	if err != nil {
		return 0, err
	}
	PutInts(buf, f.format.Depth, samples)

	written := len(samples) * f.format.Depth.Size()
	if written < len(buf) {
		return written, io.EOF
	}
	return written, nil
}

func (f *IntFeeder) Rewind() error {
	return f.seekFrame(f.win.Start)
}

func (f *IntFeeder) Seek(pos time.Duration) error {
	return f.seekFrame(f.win.Frames(pos))
}

// seekFrame rewinds the source and decodes forward to frame.
func (f *IntFeeder) seekFrame(frame int) error {
	dec, err := f.rewind()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	f.dec = dec
	f.win.Pos = 0

	const chunk = 4096
	for f.win.Pos < frame {
		samples, err := f.read(min(frame-f.win.Pos, chunk))
		if err != nil {
			return err
		}
		if len(samples) == 0 {
			break
		}
	}
	return nil
}

func (f *IntFeeder) Position() time.Duration { return f.win.Position() }
func (f *IntFeeder) Length() time.Duration   { return f.win.Length() }

func (f *IntFeeder) SetLoop(start, end time.Duration) error {
	pos := f.win.Pos
	if err := f.win.SetLoop(start, end); err != nil {
		return err
	}
	if f.win.Pos != pos {
		return f.seekFrame(f.win.Pos)
	}
	return nil
}
