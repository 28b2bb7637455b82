// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/internal/feedutil"
)

// go-mp3 always produces 16-bit stereo.
const frameSize = 4

// mp3Reader is an interface for gomp3.Decoder to allow testing
type mp3Reader interface {
	io.ReadSeeker
	SampleRate() int
	Length() int64
}

type feeder struct {
	dec mp3Reader
	win feedutil.Window
}

func newFeeder(dec mp3Reader) *feeder {
	return &feeder{
		dec: dec,
		win: feedutil.NewWindow(dec.SampleRate(), int(dec.Length()/frameSize)),
	}
}

func (f *feeder) Format() audio.FeedFormat {
	return audio.FeedFormat{Frequency: f.win.Freq, Depth: audio.DepthInt16, Conf: audio.Conf2}
}

func (f *feeder) Close() error { return nil }

func (f *feeder) Feed(buf []byte) (int, error) {
	frames := f.win.Limit(len(buf) / frameSize)
	if frames == 0 {
		return 0, io.EOF
	}

	n, err := io.ReadFull(f.dec, buf[:frames*frameSize])
	n -= n % frameSize
	f.win.Advance(n / frameSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return n, fmt.Errorf("%w", err)
	}

	if n < len(buf) {
		return n, io.EOF
	}
	return n, nil
}

func (f *feeder) seekFrame(frame int) error {
	if _, err := f.dec.Seek(int64(frame*frameSize), io.SeekStart); err != nil {
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

// Decoder decodes MP3 files into stream feeders.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Feeder, error) {
	// seeking and Length need an io.Seeker underneath
	if _, ok := r.(io.ReadSeeker); !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading mp3 data: %w", err)
		}
		r = bytes.NewReader(data)
	}

	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return newFeeder(dec), nil
}
