// SPDX-License-Identifier: EPL-2.0

// Package audmix ties the mixing engine to the bundled decoders and
// drivers.
//
// The engine itself lives in the audio subpackage. This package adds the
// glue most programs want: a System with every bundled format registered,
// and an offline renderer that turns any decoded source into mono 16-bit
// PCM.
//
// # Supported Formats
//
//   - WAV (8, 16 and 24-bit integer PCM) via formats/wav
//   - AIFF (8, 16 and 24-bit integer PCM) via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//
// # Drivers
//
//   - driver/oto plays through the platform audio device
//   - driver/beep plays through the beep speaker
//   - driver/headless renders on demand, for tests and offline work
//
// # Quick Start
//
//	sys, _ := audmix.NewSystem(oto.New(oto.DefaultConfig()))
//	defer sys.Close()
//
//	voice, _ := sys.NewVoice(audio.VoiceFormat{Frequency: 44100, Depth: audio.DepthInt16, Conf: audio.Conf2})
//	mixer, _ := sys.NewMixer(44100, audio.DepthFloat32, audio.Conf2)
//	voice.AttachMixer(mixer)
//
//	stream, _ := sys.LoadStream("music.ogg")
//	mixer.AttachStream(stream)
//	stream.SetPlaying(true)
//
// # Offline Rendering
//
//	file, _ := os.Open("audio.wav")
//	src, _ := wav.Decoder{}.Decode(file)
//	samples, rate, _ := audmix.ResampleToMono16(src, 8000, 4096)
//
// # Writing WAV Files
//
//	samples := []int16{100, -100, 200, -200}
//	file, _ := os.Create("output.wav")
//	wav.WriteWAV16(file, 8000, 1, samples)
//
// See the individual subpackages for more detailed documentation.
package audmix
