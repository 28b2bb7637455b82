// SPDX-License-Identifier: EPL-2.0

// Package audio is a software mixing engine.
//
// Playable objects form a tree: samples and streams are leaves, mixers
// combine whatever is attached to them, and a voice at the root hands the
// result to a Driver.
//
//	sys, _ := audio.NewSystem(driver)
//	voice, _ := sys.NewVoice(audio.VoiceFormat{Frequency: 44100, Depth: audio.DepthInt16, Conf: audio.Conf2})
//	mixer, _ := sys.NewMixer(44100, audio.DepthFloat32, audio.Conf2)
//	voice.AttachMixer(mixer)
//
//	spl, _ := sys.NewSample(data)
//	mixer.AttachSample(spl)
//	spl.SetPlaying(true)
//
// # Positions
//
// Playback positions, loop points and the per frame step are fixed point
// values with 8 fractional bits. The step is derived from the source rate,
// the mixer rate and the playback speed; a negative speed plays backwards.
//
// # Mixing
//
// Mixers work in float32. Each leaf is read through a point, linear or
// cubic sampler chosen by the mixer's quality, and weighted by a channel
// matrix that handles mono downmix, centre spreading, LFE routing, gain and
// pan. A mixer attached to a voice converts its mix to the voice depth with
// hard clipping.
//
// # Locking
//
// Every object attached below a voice shares that voice's mutex. The
// driver's playback goroutine holds it for the duration of Voice.Update,
// and the setters take it, so a tree may be changed while it plays.
//
// # Streams
//
// A stream plays a ring of fragments. Drained fragments are taken with
// Stream.Fragment, refilled, and queued again with Stream.SetFragment.
// Streams created by System.LoadStream do this on a goroutine driven by a
// Feeder obtained from the Registry.
package audio
