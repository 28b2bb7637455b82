// SPDX-License-Identifier: EPL-2.0

// Package vorbis provides Ogg Vorbis audio file decoding.
//
// This package uses github.com/jfreymuth/oggvorbis to decode Ogg Vorbis
// files into audio.Feeder values. Vorbis decodes to floats, so every feeder
// reports DepthFloat32, with the channel configuration taken from the
// channel count of the file.
//
//	f, _ := os.Open("theme.ogg")
//	feeder, err := vorbis.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//
// Readers that cannot seek are read into memory first, so the length of
// the file is always known and loops can rewind.
package vorbis
