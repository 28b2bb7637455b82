// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Stream plays a sequence of fixed size fragments. The caller (or a feeder
// goroutine) takes drained fragments with Fragment, refills them and hands
// them back with SetFragment.
type Stream struct {
	instance

	fragFrames int
	frags      [][]byte

	// fragMu guards pending and used. The mix path takes it under the tree
	// mutex.
	fragMu  sync.Mutex
	pending []int // pending[0] is the fragment being played
	used    []int
	active  bool

	draining atomic.Bool
	feedMode atomic.Int32

	available chan struct{}

	feeder Feeder
	feedMu sync.Mutex
	events chan streamEvent
	done   chan struct{}
}

// NewStream creates a stream of fragments buffers of fragFrames frames each.
// All fragments start out used, ready to be filled.
func (sys *System) NewStream(fragments, fragFrames, freq int, depth Depth, conf ChannelConf) (*Stream, error) {
	const op = "NewStream"

	if err := sys.check(op); err != nil {
		return nil, err
	}
	if fragments < 1 || fragFrames < 1 {
		return nil, invalidParam(op, "invalid geometry %d x %d", fragments, fragFrames)
	}
	if freq <= 0 {
		return nil, invalidParam(op, "invalid frequency %d", freq)
	}
	if !depth.Valid() || !conf.Valid() {
		return nil, invalidParam(op, "invalid format %s/%#x", depth, int(conf))
	}

	s := &Stream{
		instance:   newInstance(sys, KindStream, freq, depth, conf),
		fragFrames: fragFrames,
		frags:      make([][]byte, fragments),
		pending:    make([]int, 0, fragments),
		used:       make([]int, 0, fragments),
		available:  make(chan struct{}, fragments),
	}
	s.stream = s
	s.playing = true
	s.length = toFixed(fragFrames)
	s.loopEnd = s.length
	s.pos = s.length

	size := fragFrames * conf.Channels() * depth.Size()
	backing := make([]byte, fragments*size)
	for i := range s.frags {
		s.frags[i] = backing[i*size : (i+1)*size : (i+1)*size]
		silence(s.frags[i], depth)
		s.used = append(s.used, i)
	}

	s.log.WithFields(logrus.Fields{
		"function":  op,
		"fragments": fragments,
		"frames":    fragFrames,
	}).Debug("stream created")

	return s, nil
}

func (s *Stream) read(dst []float32, frames int, depth Depth, chans int) ([]byte, int) {
	if dst == nil {
		return s.passthrough(frames)
	}
	s.mixLeaf(dst, frames, chans)
	return nil, frames
}

func (s *Stream) isComposite() bool { return false }

// passthrough hands the voice up to frames frames of the current fragment
// as they are. The returned slice is only valid until the next call.
func (s *Stream) passthrough(frames int) ([]byte, int) {
	if !s.playing || frames <= 0 {
		return nil, 0
	}
	if !s.fixPosition() {
		return nil, 0
	}

	f := fromFixed(s.pos)
	n := min(frames, fromFixed(s.length)-f)
	fs := s.conf.Channels() * s.depth.Size()
	out := s.pcm[f*fs : (f+n)*fs]
	s.pos += toFixed(n)

	return out, n
}

// fixPosition moves to the next pending fragment once the current one has
// been consumed. It returns false when there is nothing to play.
func (s *Stream) fixPosition() bool {
	if s.pos >= 0 && s.pos < s.length && s.pcm != nil {
		return true
	}

	ok := s.refill()
	if !ok && s.draining.Load() {
		s.playing = false
	}
	s.notify()

	return ok
}

// refill retires the active fragment to used and activates the next
// pending one.
func (s *Stream) refill() bool {
	s.fragMu.Lock()
	defer s.fragMu.Unlock()

	if s.active {
		old := s.pending[0]
		s.pending = append(s.pending[:0], s.pending[1:]...)
		s.used = append(s.used, old)
		s.active = false
	}

	if len(s.pending) == 0 {
		s.pcm = nil
		s.pos = s.length
		return false
	}

	s.active = true
	s.pcm = s.frags[s.pending[0]]
	s.pos -= s.length
	if s.pos < 0 || s.pos >= s.length {
		s.pos = 0
	}

	return true
}

// notify tells the producer that used fragments are waiting.
func (s *Stream) notify() {
	s.fragMu.Lock()
	n := len(s.used)
	s.fragMu.Unlock()
	if n == 0 {
		return
	}

	if s.events != nil {
		select {
		case s.events <- eventFragment:
		default:
		}
		return
	}

	select {
	case s.available <- struct{}{}:
	default:
	}
}

// Available signals, without blocking the mixer, that Fragment has
// something to return. It is not used when the stream has a feeder.
func (s *Stream) Available() <-chan struct{} { return s.available }

// Fragment takes the oldest drained fragment, or returns nil if there is
// none. The fragment must be given back with SetFragment.
func (s *Stream) Fragment() []byte {
	s.fragMu.Lock()
	defer s.fragMu.Unlock()

	if len(s.used) == 0 {
		return nil
	}
	i := s.used[0]
	s.used = append(s.used[:0], s.used[1:]...)
	return s.frags[i]
}

// SetFragment queues a filled fragment for playback.
func (s *Stream) SetFragment(frag []byte) error {
	const op = "Stream.SetFragment"

	i := s.fragIndex(frag)
	if i < 0 {
		return invalidParam(op, "%w", ErrUnknownFragment)
	}

	s.fragMu.Lock()
	defer s.fragMu.Unlock()

	if len(s.pending) >= len(s.frags) {
		return invalidObject(op, ErrFragmentsFull)
	}
	s.pending = append(s.pending, i)
	return nil
}

func (s *Stream) fragIndex(frag []byte) int {
	if len(frag) == 0 {
		return -1
	}
	for i, f := range s.frags {
		if &f[0] == &frag[0] && len(f) == len(frag) {
			return i
		}
	}
	return -1
}

// Fragments returns the number of fragments.
func (s *Stream) Fragments() int { return len(s.frags) }

// FragmentFrames returns the size of one fragment in frames.
func (s *Stream) FragmentFrames() int { return s.fragFrames }

// AvailableFragments returns how many drained fragments are waiting.
func (s *Stream) AvailableFragments() int {
	s.fragMu.Lock()
	defer s.fragMu.Unlock()
	return len(s.used)
}

// PendingFragments returns how many fragments are queued, including the
// one being played.
func (s *Stream) PendingFragments() int {
	s.fragMu.Lock()
	defer s.fragMu.Unlock()
	return len(s.pending)
}

func (s *Stream) Playing() bool {
	unlock := s.lock()
	defer unlock()
	return s.playing
}

// SetPlaying starts or stops the stream. A stopped stream abandons the rest
// of its current fragment.
func (s *Stream) SetPlaying(playing bool) error {
	if v := s.owner().voice; v != nil {
		if err := v.setPlaying(playing); err != nil {
			return err
		}
	}

	unlock := s.lock()
	defer unlock()

	s.playing = playing
	if !playing {
		s.pos = s.length
	}
	return nil
}

func (s *Stream) PlayMode() PlayMode { return PlayMode(s.feedMode.Load()) }

// SetPlayMode selects whether a feeder rewinds at the end of its data.
// Fragments themselves always play once.
func (s *Stream) SetPlayMode(mode PlayMode) error {
	if mode != PlayModeOnce && mode != PlayModeLoop {
		return invalidParam("Stream.SetPlayMode", "unsupported play mode %s", mode)
	}
	s.feedMode.Store(int32(mode))
	return nil
}

func (s *Stream) Speed() float32 {
	unlock := s.lock()
	defer unlock()
	return s.speed
}

func (s *Stream) SetSpeed(speed float32) error {
	return s.setSpeed("Stream.SetSpeed", speed)
}

func (s *Stream) Gain() float32 {
	unlock := s.lock()
	defer unlock()
	return s.gain
}

func (s *Stream) SetGain(gain float32) error {
	return s.setGain("Stream.SetGain", gain)
}

func (s *Stream) Pan() float32 {
	unlock := s.lock()
	defer unlock()
	return s.pan
}

func (s *Stream) SetPan(pan float32) error {
	return s.setPan("Stream.SetPan", pan)
}

func (s *Stream) Frequency() int           { return s.freq }
func (s *Stream) Depth() Depth             { return s.depth }
func (s *Stream) ChannelConf() ChannelConf { return s.conf }
func (s *Stream) Channels() int            { return s.conf.Channels() }
func (s *Stream) Attached() bool           { return s.owner().attached() }
func (s *Stream) Draining() bool           { return s.draining.Load() }

// Drain blocks until everything queued has been played. An unattached
// stream is simply stopped.
func (s *Stream) Drain(ctx context.Context) error {
	if !s.Attached() {
		return s.SetPlaying(false)
	}

	s.draining.Store(true)
	defer s.draining.Store(false)

	ticker := time.NewTicker(s.sys.cfg.DrainInterval)
	defer ticker.Stop()

	for s.Playing() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Detach removes the stream from its mixer or voice.
func (s *Stream) Detach() error { return detach(s) }

// Destroy detaches the stream and stops its feeder.
func (s *Stream) Destroy() error {
	if err := s.Detach(); err != nil {
		return err
	}
	if s.feeder == nil {
		return nil
	}

	select {
	case s.events <- eventQuit:
	case <-s.done:
	}
	<-s.done

	s.feedMu.Lock()
	defer s.feedMu.Unlock()
	err := s.feeder.Close()
	s.feeder = nil
	if err != nil {
		return generic("Stream.Destroy", err)
	}
	return nil
}

// SetFeeder attaches f and starts the goroutine that keeps the fragments
// full. The feeder's format must match the stream.
func (s *Stream) SetFeeder(f Feeder) error {
	const op = "Stream.SetFeeder"

	if s.feeder != nil {
		return invalidObject(op, ErrAlreadyAttached)
	}
	ff := f.Format()
	if ff.Frequency != s.freq || ff.Depth != s.depth || ff.Conf != s.conf {
		return invalidParam(op, "%w: feeder %s/%#x@%d", ErrFormatMismatch, ff.Depth, int(ff.Conf), ff.Frequency)
	}

	s.feeder = f
	s.events = make(chan streamEvent, s.sys.cfg.FeederQueue)
	s.done = make(chan struct{})
	go s.feedLoop()

	s.events <- eventFragment
	return nil
}

func (s *Stream) withFeeder(op string, fn func(Feeder) error) error {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	if s.feeder == nil {
		return invalidObject(op, ErrNoFeeder)
	}
	if err := fn(s.feeder); err != nil {
		return generic(op, err)
	}
	return nil
}

// restart clears the end-of-data state after the feeder moved and wakes
// the feeder goroutine.
func (s *Stream) restart() {
	s.draining.Store(false)
	select {
	case s.events <- eventFragment:
	default:
	}
}

func (s *Stream) Rewind() error {
	err := s.withFeeder("Stream.Rewind", Feeder.Rewind)
	if err == nil {
		s.restart()
	}
	return err
}

func (s *Stream) Seek(pos time.Duration) error {
	err := s.withFeeder("Stream.Seek", func(f Feeder) error { return f.Seek(pos) })
	if err == nil {
		s.restart()
	}
	return err
}

func (s *Stream) SetLoop(start, end time.Duration) error {
	if start < 0 || end <= start {
		return invalidParam("Stream.SetLoop", "invalid loop %s..%s", start, end)
	}
	return s.withFeeder("Stream.SetLoop", func(f Feeder) error { return f.SetLoop(start, end) })
}

// Position reports the feeder's decode position, which runs ahead of what
// is audible by the queued fragments.
func (s *Stream) Position() (time.Duration, error) {
	var pos time.Duration
	err := s.withFeeder("Stream.Position", func(f Feeder) error {
		pos = f.Position()
		return nil
	})
	return pos, err
}

func (s *Stream) Length() (time.Duration, error) {
	var l time.Duration
	err := s.withFeeder("Stream.Length", func(f Feeder) error {
		l = f.Length()
		return nil
	})
	return l, err
}
