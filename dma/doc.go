// SPDX-License-Identifier: EPL-2.0

// Package dma feeds a DAC from a ring of N DMA buffers (N >= 2).
//
// A Pipeline pulls frames from a PullSource, runs them through a dsp.Chain,
// encodes them into the DMA byte format and hands them to a hal.Output.
// The output drains one buffer at a time and raises an interrupt when it is
// done; the pipeline's handler arms the next buffer and marks the drained
// one for refill.
//
//	p, err := dma.New(out, chain, dma.Options{Buffers: 3})
//	if err != nil {
//	    return err
//	}
//	if err := p.Start(source); err != nil {
//	    return err
//	}
//	for {
//	    p.Process() // refill whatever the hardware released
//	    ...
//	}
//
// # Ownership
//
// Each buffer is owned by exactly one side at a time. A set bit in the
// refill mask hands buffer k to the main loop; Process writes it, flushes
// the data cache over it and clears the bit, which hands it back. The
// interrupt handler only arms buffers whose bit is clear and only sets the
// bit of the buffer that just finished. Nothing else is shared: the drain
// index, the valid frame count per buffer, the played counter and the
// underrun counters are all sync/atomic values, so the handler never locks
// and never allocates.
//
// # Underruns
//
// Two things can go wrong and both are counted, never returned as errors:
//
//   - The hardware finishes a buffer while the next one is still waiting
//     for refill. The handler arms a permanently zero silence buffer and
//     retries on the next interrupt. One DMA underrun is counted per
//     episode.
//   - The source cannot fill a buffer. Process zero-fills the shortfall and
//     counts one starvation per episode. A source that reports done is not
//     starving.
//
// Played counts only frames that came from the source, so zero fill and
// silence never advance the playback position.
//
// # Start and Stop
//
// Start primes every buffer synchronously, installs the interrupt handler
// and arms buffer 0. Stop disarms DMA, masks the interrupt and then resets
// the pipeline, in that order; an interrupt that still arrives is counted
// as spurious and ignored.
package dma
