// SPDX-License-Identifier: EPL-2.0

package audio

// VoiceFormat is the output format of a voice. Drivers may change it in
// AllocateVoice to what the device actually supports.
type VoiceFormat struct {
	Frequency int
	Depth     Depth
	Conf      ChannelConf
	// BufferFrames and Buffers are hints for how the driver sizes its
	// device queue. Zero lets the driver choose.
	BufferFrames int
	Buffers      int
}

// VoiceData is what a driver plays when a sample is attached directly to a
// voice. The driver owns playback (including looping) until the sample is
// detached.
type VoiceData struct {
	PCM       []byte
	Frames    int
	Depth     Depth
	Conf      ChannelConf
	Mode      PlayMode
	LoopStart int // frames
	LoopEnd   int // frames
}

// Driver is the contract between a System and an audio backend.
//
// Voices attached to a stream or a mixer are streaming voices: the driver
// pulls PCM from them with Voice.Update from its own playback goroutine.
// Voices attached to a plain sample receive the whole buffer through
// LoadVoice instead.
//
// StartVoice and StopVoice are never called with the voice mutex held, so a
// driver may call Voice.Update synchronously from them.
type Driver interface {
	Name() string

	Open() error
	Close() error

	AllocateVoice(v *Voice, f *VoiceFormat) error
	DeallocateVoice(v *Voice)

	LoadVoice(v *Voice, data VoiceData) error
	UnloadVoice(v *Voice)

	StartVoice(v *Voice) error
	StopVoice(v *Voice) error
	VoiceIsPlaying(v *Voice) bool

	// VoicePosition and SetVoicePosition are in frames and only used for
	// non-streaming voices.
	VoicePosition(v *Voice) int
	SetVoicePosition(v *Voice, frames int) error
}
