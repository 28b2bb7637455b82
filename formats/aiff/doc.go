// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files into
// audio.Feeder values that streams pull fragments from.
//
//	f, _ := os.Open("audio.aif")
//	feeder, err := aiff.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//
// Integer PCM of 8, 16, 24 and 32 bits is supported. AIFF stores 8-bit
// samples signed, so they are fed as int8; 32-bit samples are fed as
// float32.
//
// Seeking and rewinding reopen the file from its start, so the reader
// passed to Decode must stay valid while the feeder is in use. Readers
// that cannot seek are read into memory first.
package aiff
