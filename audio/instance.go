// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// node is implemented by every object that can be attached to a mixer or a
// voice: *Sample, *Stream and *Mixer.
type node interface {
	base() *instance

	// read produces frames frames. With a non-nil dst the contribution is
	// added to dst, which holds frames * chans floats. With a nil dst the
	// node is the final mixdown of a voice and returns its PCM in depth.
	read(dst []float32, frames int, depth Depth, chans int) ([]byte, int)

	// isComposite reports whether the node mixes other nodes.
	isComposite() bool
}

// parentRef points at whatever an instance is attached to. At most one of
// the fields is set.
type parentRef struct {
	voice *Voice
	mixer *Mixer
}

func (p parentRef) attached() bool { return p.voice != nil || p.mixer != nil }

// instance is the playback state shared by samples, streams and mixers.
// Unless noted otherwise fields are guarded by mu once the instance is
// attached to a tree with a voice at its root.
type instance struct {
	sys  *System
	log  *logrus.Entry
	kind Kind

	depth  Depth
	conf   ChannelConf
	freq   int
	length int // fixed point
	pcm    []byte

	playing bool
	mode    PlayMode
	speed   float32
	gain    float32
	pan     float32

	pos       int // fixed point
	loopStart int // fixed point
	loopEnd   int // fixed point
	step      int // fixed point, signed

	matrix  []float32
	sampler samplerFunc
	frame   [MaxChannels]float32

	// link guards mu and parent, which change on attach and detach while
	// other goroutines look them up.
	link   sync.Mutex
	mu     *sync.Mutex
	parent parentRef

	stream *Stream
}

func newInstance(sys *System, kind Kind, freq int, depth Depth, conf ChannelConf) instance {
	return instance{
		sys:   sys,
		log:   sys.log.WithField("component", kind.String()),
		kind:  kind,
		depth: depth,
		conf:  conf,
		freq:  freq,
		speed: 1.0,
		gain:  1.0,
		pan:   PanNone,
	}
}

func (in *instance) base() *instance { return in }

func maybeLock(mu *sync.Mutex) {
	if mu != nil {
		mu.Lock()
	}
}

func maybeUnlock(mu *sync.Mutex) {
	if mu != nil {
		mu.Unlock()
	}
}

func (in *instance) treeMutex() *sync.Mutex {
	in.link.Lock()
	defer in.link.Unlock()
	return in.mu
}

// owner returns what the instance is attached to.
func (in *instance) owner() parentRef {
	in.link.Lock()
	defer in.link.Unlock()
	return in.parent
}

func (in *instance) setOwner(p parentRef) {
	in.link.Lock()
	in.parent = p
	in.link.Unlock()
}

// lock takes the tree mutex, if any, and returns the matching unlock. The
// instance may move to another tree while lock waits; it then retries with
// the new tree's mutex.
func (in *instance) lock() func() {
	for {
		mu := in.treeMutex()
		maybeLock(mu)
		if in.treeMutex() == mu {
			return func() { maybeUnlock(mu) }
		}
		maybeUnlock(mu)
	}
}

// mixLeaf adds frames interpolated, matrix weighted frames of a sample or
// stream into acc, which is interleaved with destChans channels.
func (in *instance) mixLeaf(acc []float32, frames, destChans int) {
	if !in.playing || in.sampler == nil {
		return
	}
	if in.kind != KindStream && in.length == 0 {
		return
	}

	chans := in.conf.Channels()
	o := 0
	for range frames {
		if !in.fixLoopedPosition() {
			return
		}

		in.sampler(in, chans)
		for c := range destChans {
			row := in.matrix[c*chans : (c+1)*chans]
			var sum float32
			for i, g := range row {
				sum += in.frame[i] * g
			}
			acc[o] += sum
			o++
		}

		in.pos += in.step
	}

	// Streams refill lazily when the next frame is actually needed.
	if in.kind != KindStream {
		in.fixLoopedPosition()
	}
}

// rejig rebuilds the channel matrix against the current parent mixer.
func (in *instance) rejig() {
	m := in.owner().mixer
	if m == nil || in.kind == KindMixer {
		return
	}
	in.matrix = buildMatrix(in.conf, m.conf, in.gain, in.pan, in.sys.cfg.PanLaw)
}

// restep recomputes the step against the current parent mixer.
func (in *instance) restep() {
	if m := in.owner().mixer; m != nil {
		in.step = computeStep(in.freq, m.freq, in.speed)
	}
}

func (in *instance) setSpeed(op string, speed float32) error {
	if speed > -minSpeed && speed < minSpeed {
		return invalidParam(op, "speed %g too close to zero", speed)
	}
	if in.owner().voice != nil {
		return invalidObject(op, errVoiceParent)
	}

	unlock := in.lock()
	defer unlock()

	in.speed = speed
	in.restep()
	return nil
}

func (in *instance) setGain(op string, gain float32) error {
	if in.owner().voice != nil {
		return invalidObject(op, errVoiceParent)
	}

	unlock := in.lock()
	defer unlock()

	in.gain = gain
	in.rejig()
	return nil
}

func (in *instance) setPan(op string, pan float32) error {
	if pan != PanNone && (pan < -1 || pan > 1) {
		return invalidParam(op, "pan %g out of range", pan)
	}
	if in.owner().voice != nil {
		return invalidObject(op, errVoiceParent)
	}

	unlock := in.lock()
	defer unlock()

	in.pan = pan
	in.rejig()
	return nil
}
