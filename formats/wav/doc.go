// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files.
//
// Decoder turns a WAV file into an audio.Feeder, which a stream pulls
// fragments from:
//
//	f, _ := os.Open("loop.wav")
//	feeder, err := wav.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//	stream.SetFeeder(feeder)
//
// Integer PCM of 8, 16, 24 and 32 bits is supported. 8-bit data is fed as
// unsigned, 24-bit data in 4-byte containers, and 32-bit data as float32.
// Decoding uses github.com/go-audio/wav; seeking rewinds the file and
// decodes forward to the target frame.
//
// # Writing WAV Files
//
// WriteWAV16 writes a complete 16-bit file in one call to any io.Writer:
//
//	err := wav.WriteWAV16(file, 8000, 1, samples)
//
// Recorder appends voice output to a seekable destination as it is
// produced, and fixes up the header on Close. The headless driver uses it
// to capture what a voice played.
//
// # Errors
//
//   - ErrNotWavFile: the input is not a RIFF/WAVE file
//   - ErrUnsupportedWavLayout: the chunks or channel count are not supported
//   - ErrUnsupportedFormat: the data is not integer PCM
//   - ErrUnsupportedBitDepth: the sample size is not 8, 16, 24 or 32 bits
package wav
