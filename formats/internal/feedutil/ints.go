// SPDX-License-Identifier: EPL-2.0

package feedutil

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ik5/audmix/audio"
)

var (
	ErrBitDepth = errors.New("unsupported bit depth")
	ErrChannels = errors.New("unsupported channel count")
)

// IntDepth maps the sample size of integer PCM to the depth PutInts
// produces. unsigned8 tells whether the format stores 8-bit data unsigned.
// 32-bit data is produced as float32.
func IntDepth(bits int, unsigned8 bool) (audio.Depth, error) {
	switch bits {
	case 8:
		if unsigned8 {
			return audio.DepthUint8, nil
		}
		return audio.DepthInt8, nil
	case 16:
		return audio.DepthInt16, nil
	case 24:
		return audio.DepthInt24, nil
	case 32:
		return audio.DepthFloat32, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrBitDepth, bits)
}

// Conf returns the usual channel configuration for a channel count.
func Conf(channels int) (audio.ChannelConf, error) {
	switch channels {
	case 1:
		return audio.Conf1, nil
	case 2:
		return audio.Conf2, nil
	case 3:
		return audio.Conf3, nil
	case 4:
		return audio.Conf4, nil
	case 6:
		return audio.Conf51, nil
	case 7:
		return audio.Conf61, nil
	case 8:
		return audio.Conf71, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrChannels, channels)
}

// PutInts encodes samples, as returned by the go-audio decoders, into buf
// in depth d.
func PutInts(buf []byte, d audio.Depth, samples []int) {
	switch d {
	case audio.DepthInt8, audio.DepthUint8:
		for i, v := range samples {
			buf[i] = byte(v)
		}
	case audio.DepthInt16:
		for i, v := range samples {
			binary.LittleEndian.PutUint16(buf[i*2:], uint16(int16(v)))
		}
	case audio.DepthInt24:
		for i, v := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(int32(v)))
		}
	default:
		for i, v := range samples {
			binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(float32(v)/(1<<31)))
		}
	}
}
