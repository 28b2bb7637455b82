// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// RegisterFormats adds the bundled decoders to r.
func RegisterFormats(r *audio.Registry) {
	r.Register("wav", wav.Decoder{})
	r.Register("wave", wav.Decoder{})
	r.Register("aif", aiff.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
}

// NewSystem opens an audio system on driver with every bundled format
// registered, so LoadSample and LoadStream work on WAV, AIFF, MP3 and Ogg
// Vorbis files.
func NewSystem(driver audio.Driver, cfg ...*audio.Config) (*audio.System, error) {
	sys, err := audio.NewSystem(driver, cfg...)
	if err != nil {
		return nil, err
	}
	RegisterFormats(sys.Registry())
	return sys, nil
}
