// SPDX-License-Identifier: EPL-2.0

package audcore

import (
	"github.com/ik5/audcore/audio"
	"github.com/ik5/audcore/formats/aac"
	"github.com/ik5/audcore/formats/aiff"
	"github.com/ik5/audcore/formats/flac"
	"github.com/ik5/audcore/formats/mp3"
	"github.com/ik5/audcore/formats/vorbis"
	"github.com/ik5/audcore/formats/wav"
)

// DefaultRegistry returns a registry holding every bundled codec.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register("wav", wav.Decoder{}, "wave")
	reg.Register("aiff", aiff.Decoder{}, "aif", "aifc")
	reg.Register("flac", flac.Decoder{})
	reg.Register("ogg", vorbis.Decoder{}, "oga")
	reg.Register("mp3", mp3.Decoder{}, "mpga")
	reg.Register("aac", aac.Decoder{}, "adts")
	return reg
}

// Formats lists the tags registered by DefaultRegistry.
func Formats() []string {
	return []string{"wav", "aiff", "flac", "ogg", "mp3", "aac"}
}
