// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"time"
)

// FeedFormat is the PCM layout a Feeder produces.
type FeedFormat struct {
	Frequency int
	Depth     Depth
	Conf      ChannelConf
}

// Feeder produces PCM for a stream backed by a decoder.
type Feeder interface {
	Format() FeedFormat

	// Feed fills buf with whole frames and returns the number of bytes
	// written. A short count means the decoder reached the end of its data
	// or of the loop window. io.EOF may accompany a short count.
	Feed(buf []byte) (int, error)

	// Rewind goes back to the start of the loop window, or of the data when
	// no window is set.
	Rewind() error
	Seek(pos time.Duration) error
	Position() time.Duration
	Length() time.Duration
	// SetLoop restricts playback to [start, end).
	SetLoop(start, end time.Duration) error

	Close() error
}

type streamEvent int

const (
	eventFragment streamEvent = iota
	eventQuit
)

// feedLoop runs on its own goroutine for streams created with a feeder. It
// refills used fragments whenever the mix path reports one.
func (s *Stream) feedLoop() {
	defer close(s.done)

	log := s.log.WithField("function", "feedLoop")
	log.Debug("feeder started")

	for ev := range s.events {
		if ev == eventQuit {
			log.Debug("feeder stopped")
			return
		}
		if s.draining.Load() {
			continue
		}
		s.feedAvailable()
	}
}

// feedAvailable fills and resubmits every used fragment.
func (s *Stream) feedAvailable() {
	for !s.draining.Load() {
		frag := s.Fragment()
		if frag == nil {
			return
		}

		n, err := s.feedFragment(frag)
		if err != nil {
			s.log.WithField("function", "feedAvailable").WithError(err).Error("feeder failed")
		}

		if n < len(frag) {
			silence(frag[n:], s.depth)
			// Once the decoder is exhausted, let the stream play out
			// what is queued and stop.
			s.draining.Store(true)
		}

		if err := s.SetFragment(frag); err != nil {
			s.log.WithField("function", "feedAvailable").WithError(err).Warn("resubmitting fragment failed")
			return
		}
	}
}

// feedFragment fills frag from the feeder, rewinding while the stream
// loops. It returns the number of bytes filled.
func (s *Stream) feedFragment(frag []byte) (int, error) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	n, err := s.feeder.Feed(frag)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, err
	}

	for n < len(frag) && PlayMode(s.feedMode.Load()) == PlayModeLoop {
		if err := s.feeder.Rewind(); err != nil {
			return n, err
		}
		m, err := s.feeder.Feed(frag[n:])
		if err != nil && !errors.Is(err, io.EOF) {
			return n + m, err
		}
		if m == 0 {
			break
		}
		n += m
	}

	return n, nil
}

// ReadAll feeds f to its end into an owned SampleData, chunkFrames frames
// at a time.
func ReadAll(f Feeder, chunkFrames int) (*SampleData, error) {
	ff := f.Format()
	frameSize := ff.Conf.Channels() * ff.Depth.Size()
	if chunkFrames <= 0 {
		chunkFrames = 4096
	}

	chunk := make([]byte, chunkFrames*frameSize)
	pcm := make([]byte, 0, len(chunk))
	for {
		n, err := f.Feed(chunk)
		pcm = append(pcm, chunk[:n]...)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if n < len(chunk) || errors.Is(err, io.EOF) {
			break
		}
	}

	frames := len(pcm) / frameSize
	return NewSampleData(NewBuffer(pcm, Owned), frames, ff.Frequency, ff.Depth, ff.Conf)
}
