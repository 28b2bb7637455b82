// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/jfreymuth/oggvorbis"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/internal/feedutil"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
	SetPosition(pos int64) error
	Length() int64
}

type feeder struct {
	dec      oggReader
	format   audio.FeedFormat
	channels int
	win      feedutil.Window
	values   []float32
}

func newFeeder(dec oggReader) (*feeder, error) {
	channels := dec.Channels()
	conf, err := feedutil.Conf(channels)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	return &feeder{
		dec:      dec,
		format:   audio.FeedFormat{Frequency: dec.SampleRate(), Depth: audio.DepthFloat32, Conf: conf},
		channels: channels,
		win:      feedutil.NewWindow(dec.SampleRate(), int(dec.Length())),
	}, nil
}

func (f *feeder) Format() audio.FeedFormat { return f.format }
func (f *feeder) Close() error             { return nil }

func (f *feeder) Feed(buf []byte) (int, error) {
	frameSize := f.channels * 4
	frames := f.win.Limit(len(buf) / frameSize)
	if frames == 0 {
		return 0, io.EOF
	}

	want := frames * f.channels
	if cap(f.values) < want {
		f.values = make([]float32, want)
	}
	values := f.values[:want]

	// Read returns at most one packet per call
	got := 0
	var err error
	for got < want {
		var n int
		n, err = f.dec.Read(values[got:])
		got += n
		if err != nil || n == 0 {
			break
		}
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("%w", err)
	}

	got -= got % f.channels
	for i, v := range values[:got] {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	f.win.Advance(got / f.channels)

	written := got * 4
	if written < len(buf) {
		return written, io.EOF
	}
	return written, nil
}

func (f *feeder) seekFrame(frame int) error {
	if err := f.dec.SetPosition(int64(frame)); err != nil {
		return fmt.Errorf("%w", err)
	}
	f.win.Pos = frame
	return nil
}

func (f *feeder) Rewind() error                { return f.seekFrame(f.win.Start) }
func (f *feeder) Seek(pos time.Duration) error { return f.seekFrame(f.win.Frames(pos)) }

func (f *feeder) Position() time.Duration { return f.win.Position() }
func (f *feeder) Length() time.Duration   { return f.win.Length() }

func (f *feeder) SetLoop(start, end time.Duration) error {
	pos := f.win.Pos
	if err := f.win.SetLoop(start, end); err != nil {
		return err
	}
	if f.win.Pos != pos {
		return f.seekFrame(f.win.Pos)
	}
	return nil
}

// Decoder decodes Ogg Vorbis files into stream feeders.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Feeder, error) {
	// oggvorbis only knows the length of seekable input
	if _, ok := r.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading ogg data: %w", err)
		}
		r = bytes.NewReader(data)
	}

	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newFeeder(dec)
}
