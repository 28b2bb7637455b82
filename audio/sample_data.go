// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"time"
)

// SampleData describes a block of interleaved PCM frames. Its format is
// fixed at creation.
type SampleData struct {
	buf    *Buffer
	depth  Depth
	conf   ChannelConf
	freq   int
	frames int
}

// NewSampleData describes frames frames of buf. The buffer must hold at
// least frames * channels * depth size bytes.
func NewSampleData(buf *Buffer, frames, freq int, depth Depth, conf ChannelConf) (*SampleData, error) {
	const op = "NewSampleData"

	if buf == nil {
		return nil, invalidParam(op, "nil buffer")
	}
	if freq <= 0 {
		return nil, invalidParam(op, "invalid frequency %d", freq)
	}
	if !depth.Valid() {
		return nil, invalidParam(op, "invalid depth %d", depth)
	}
	if !conf.Valid() {
		return nil, invalidParam(op, "invalid channel configuration %#x", int(conf))
	}
	if frames < 0 {
		return nil, invalidParam(op, "negative length %d", frames)
	}

	need := frames * conf.Channels() * depth.Size()
	if got := len(buf.Bytes()); got < need {
		return nil, invalidParam(op, "buffer holds %d bytes, %d frames need %d", got, frames, need)
	}

	return &SampleData{
		buf:    buf,
		depth:  depth,
		conf:   conf,
		freq:   freq,
		frames: frames,
	}, nil
}

// AllocSampleData returns an owned, silent sample data block.
func AllocSampleData(frames, freq int, depth Depth, conf ChannelConf) (*SampleData, error) {
	if !depth.Valid() || !conf.Valid() || frames < 0 {
		return nil, invalidParam("AllocSampleData", "invalid format %s/%#x/%d", depth, int(conf), frames)
	}
	buf := make([]byte, frames*conf.Channels()*depth.Size())
	silence(buf, depth)
	return NewSampleData(NewBuffer(buf, Owned), frames, freq, depth, conf)
}

func (d *SampleData) Buffer() *Buffer          { return d.buf }
func (d *SampleData) Bytes() []byte            { return d.buf.Bytes() }
func (d *SampleData) Depth() Depth             { return d.depth }
func (d *SampleData) ChannelConf() ChannelConf { return d.conf }
func (d *SampleData) Channels() int            { return d.conf.Channels() }
func (d *SampleData) Frequency() int           { return d.freq }
func (d *SampleData) Frames() int              { return d.frames }

// FrameSize is the size of one interleaved frame in bytes.
func (d *SampleData) FrameSize() int { return d.conf.Channels() * d.depth.Size() }

func (d *SampleData) Duration() time.Duration {
	return time.Duration(d.frames) * time.Second / time.Duration(d.freq)
}

// ref returns a copy of the description holding its own claim on the buffer.
func (d *SampleData) ref() *SampleData {
	cp := *d
	cp.buf = d.buf.Ref()
	return &cp
}

func (d *SampleData) sameFormat(o *SampleData) bool {
	return d.depth == o.depth && d.conf == o.conf && d.freq == o.freq
}

func (d *SampleData) String() string {
	return fmt.Sprintf("%d frames %s %dch @%dHz (%s)", d.frames, d.depth, d.conf.Channels(), d.freq, d.buf.Ownership())
}
