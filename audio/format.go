// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"encoding/binary"
	"math"
)

// Depth is the sample format of a PCM buffer.
//
// 24-bit samples are stored in a 4 byte little-endian container.
type Depth int

const (
	DepthInt8    Depth = 0x00
	DepthInt16   Depth = 0x01
	DepthInt24   Depth = 0x02
	DepthFloat32 Depth = 0x03

	// DepthUnsigned is or'ed into a depth to select the unsigned variant.
	DepthUnsigned Depth = 0x08

	DepthUint8  = DepthInt8 | DepthUnsigned
	DepthUint16 = DepthInt16 | DepthUnsigned
	DepthUint24 = DepthInt24 | DepthUnsigned
)

// Valid reports whether d names a supported depth. The unsigned float
// variant is accepted.
func (d Depth) Valid() bool {
	return d&^(DepthUnsigned|0x03) == 0
}

// Unsigned reports whether the depth is an unsigned variant.
func (d Depth) Unsigned() bool { return d&DepthUnsigned != 0 }

// Base strips the unsigned flag.
func (d Depth) Base() Depth { return d &^ DepthUnsigned }

// Size returns the number of bytes one sample of this depth occupies.
func (d Depth) Size() int {
	switch d.Base() {
	case DepthInt8:
		return 1
	case DepthInt16:
		return 2
	default:
		return 4
	}
}

// maxMagnitude is the largest positive value of the integer depths.
func (d Depth) maxMagnitude() float32 {
	switch d.Base() {
	case DepthInt8:
		return 0x7F
	case DepthInt16:
		return 0x7FFF
	case DepthInt24:
		return 0x7FFFFF
	default:
		return 1
	}
}

func (d Depth) String() string {
	switch d {
	case DepthInt8:
		return "int8"
	case DepthInt16:
		return "int16"
	case DepthInt24:
		return "int24"
	case DepthFloat32:
		return "float32"
	case DepthUint8:
		return "uint8"
	case DepthUint16:
		return "uint16"
	case DepthUint24:
		return "uint24"
	case DepthFloat32 | DepthUnsigned:
		return "ufloat32"
	}
	return "invalid"
}

// Decode returns sample i of buf as a normalized float.
//
// Signed integers are divided by (max + 0.5), unsigned ones are divided the
// same way and then shifted down by 1.0. Float data is passed through, and
// unsigned float data is shifted down by 1.0 as well.
func (d Depth) Decode(buf []byte, i int) float32 {
	switch d {
	case DepthInt8:
		return float32(int8(buf[i])) / (0x7F + 0.5)
	case DepthInt16:
		return float32(int16(binary.LittleEndian.Uint16(buf[i*2:]))) / (0x7FFF + 0.5)
	case DepthInt24:
		return float32(int24(binary.LittleEndian.Uint32(buf[i*4:]))) / (0x7FFFFF + 0.5)
	case DepthFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	case DepthUint8:
		return float32(buf[i])/(0x7F+0.5) - 1.0
	case DepthUint16:
		return float32(binary.LittleEndian.Uint16(buf[i*2:]))/(0x7FFF+0.5) - 1.0
	case DepthUint24:
		return float32(binary.LittleEndian.Uint32(buf[i*4:])&0xFFFFFF)/(0x7FFFFF+0.5) - 1.0
	default:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])) - 1.0
	}
}

// int24 sign extends the low 24 bits of v.
func int24(v uint32) int32 {
	return int32(v<<8) >> 8
}

// ChannelConf is a speaker configuration packed as (main << 4) | lfe.
type ChannelConf int

const (
	Conf1  ChannelConf = 0x10
	Conf2  ChannelConf = 0x20
	Conf3  ChannelConf = 0x30
	Conf4  ChannelConf = 0x40
	Conf51 ChannelConf = 0x51
	Conf61 ChannelConf = 0x61
	Conf71 ChannelConf = 0x71
)

// MaxChannels is the largest channel count any configuration describes.
const MaxChannels = 8

// Main is the number of main (non LFE) channels.
func (c ChannelConf) Main() int { return int(c >> 4) }

// LFE is the number of low frequency channels.
func (c ChannelConf) LFE() int { return int(c & 0xF) }

// HasCenter reports whether the layout has a centre channel, which is the
// case for odd main channel counts (mono is a lone centre channel).
func (c ChannelConf) HasCenter() bool { return c.Main()&1 == 1 }

// Channels returns the total number of interleaved channels.
func (c ChannelConf) Channels() int { return c.Main() + c.LFE() }

// Valid reports whether c is one of the supported layouts.
func (c ChannelConf) Valid() bool {
	switch c {
	case Conf1, Conf2, Conf3, Conf4, Conf51, Conf61, Conf71:
		return true
	}
	return false
}

// PlayMode selects what happens when playback reaches the end of the data.
type PlayMode int

const (
	PlayModeOnce PlayMode = iota
	PlayModeLoop
	PlayModeBidir
)

func (m PlayMode) Valid() bool { return m >= PlayModeOnce && m <= PlayModeBidir }

func (m PlayMode) String() string {
	switch m {
	case PlayModeOnce:
		return "once"
	case PlayModeLoop:
		return "loop"
	case PlayModeBidir:
		return "bidir"
	}
	return "invalid"
}

// Quality selects the interpolation used when a mixer reads its leaves.
type Quality int

const (
	QualityPoint Quality = iota
	QualityLinear
	QualityCubic
)

func (q Quality) Valid() bool { return q >= QualityPoint && q <= QualityCubic }

func (q Quality) String() string {
	switch q {
	case QualityPoint:
		return "point"
	case QualityLinear:
		return "linear"
	case QualityCubic:
		return "cubic"
	}
	return "invalid"
}

// Kind tags the concrete type of a playable object.
type Kind int

const (
	KindSample Kind = iota
	KindStream
	KindMixer
)

func (k Kind) String() string {
	switch k {
	case KindSample:
		return "sample"
	case KindStream:
		return "stream"
	case KindMixer:
		return "mixer"
	}
	return "invalid"
}

// PanNone disables panning. Any other pan value must be within [-1, 1].
const PanNone float32 = -1000.0
