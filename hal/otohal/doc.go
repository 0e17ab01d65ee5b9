// SPDX-License-Identifier: EPL-2.0

// Package otohal runs the playback core on a host sound card through
// github.com/ebitengine/oto/v3.
//
// The oto player pulls bytes from the Device on its own goroutine. That
// pull plays the part of the DMA engine: it drains the armed buffer and,
// once the buffer is used up, calls the registered interrupt handler on the
// same goroutine before carrying on with whatever the handler armed.
// Nothing armed, or a paused channel, reads as silence.
//
// 16-bit output is passed through as signed little-endian PCM. 24-bit
// output, which the core stores left justified in 32-bit words, is handed
// to oto as float32 of the same width.
//
// oto opens one context per process, so the first Configure fixes the
// sample rate. Later requests for a different rate fail with
// hal.ErrRateUnsupported and the caller resamples instead.
package otohal
