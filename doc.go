// SPDX-License-Identifier: EPL-2.0

// Package audcore is the playback core of a portable audio player: it reads
// compressed tracks from block storage, decodes them into a ring buffer,
// runs them through a fixed-point DSP chain and keeps a ring of DMA buffers
// full for the DAC, switching tracks without a gap.
//
// The root package only bundles the codecs. The work is done by the
// subpackages:
//
//   - storage: block devices, extents and the file catalog
//   - audio: frames, codecs, the registry and the resampler
//   - formats/...: WAV, AIFF, FLAC, Ogg Vorbis, MP3 and AAC (ADTS) codecs
//   - decoder: a decoding slot that fills a frame ring from one track
//   - dsp: equalizer, bass shelf, stereo width, volume ramp, dither and
//     the DMA sample encoding
//   - gapless: the coordinator that prebuffers the next track and hands
//     over between tracks on the exact frame
//   - dma: the buffer ring and the transfer-complete interrupt handler
//   - hal: the hardware interfaces, with hal/sim for tests and hal/otohal
//     for playback on a desktop
//   - player: the public player API
//   - config: the YAML settings file
//
// # Quick Start
//
//	_, files := storage.NewImage(512).Add("/a.flac", data).Build()
//	hw := sim.New(sim.Options{})
//	p, err := player.New(hw, hw, audcore.DefaultRegistry(), files, player.Options{})
//	if err != nil {
//	    return err
//	}
//	if err := p.LoadAndPlay("/a.flac"); err != nil {
//	    return err
//	}
//	for p.State() != player.Stopped {
//	    p.Tick()
//	}
//
// On real hardware the same loop runs with a hal.Output whose interrupt
// calls back into the dma package; on a desktop, hal/otohal plays through
// the sound card. The cmd/audplay command does the latter.
//
// # Supported Formats
//
// DefaultRegistry detects formats by their magic bytes first and by file
// extension second:
//
//	wav   .wav .wave     PCM 8 to 32 bit
//	aiff  .aiff .aif     PCM, big endian
//	flac  .flac
//	ogg   .ogg .oga      Vorbis
//	mp3   .mp3 .mpga     resyncs on damaged frames
//	aac   .aac .adts     ADTS framed AAC-LC, resyncs on damaged frames
package audcore
