// SPDX-License-Identifier: EPL-2.0

// Package mp3 provides MP3 audio file decoding.
//
// This package uses github.com/hajimehoshi/go-mp3 to decode MP3 files into
// audio.Feeder values. go-mp3 always produces 16-bit stereo, so every
// feeder reports DepthInt16 and Conf2 whatever the file holds.
//
//	f, _ := os.Open("music.mp3")
//	feeder, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//	    // Handle error
//	}
//
// Seeking and the file length need a seekable reader; readers that cannot
// seek are read into memory first.
package mp3
