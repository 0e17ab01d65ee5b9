// SPDX-License-Identifier: EPL-2.0

// Package sim is a simulated audio output: a DMA engine, a DAC and the
// DAC's control port, implementing hal.Output and hal.CodecControl.
//
// Nothing runs on its own. The caller plays the hardware by calling
// Complete, which finishes the transfer in flight and raises the
// interrupt, running the registered handler on the calling goroutine:
//
//	eng := sim.New(sim.Options{Capture: true})
//	pipe := dma.New(eng, chain, dma.Options{})
//	pipe.Start(source)
//	for eng.Complete() {
//	    pipe.Process()
//	}
//	pcm := eng.Played()
//
// Tests that want interrupts at arbitrary points call Complete from a
// separate goroutine.
//
// # Cache Model
//
// Every AllocDMA region exists twice: the CPU's view (the returned slice)
// and the memory the DMA engine reads. Writes reach the engine only through
// FlushCache. The engine counts the two ways software can get this wrong:
//
//   - Stale: a buffer armed while its CPU view differs from memory
//   - Overwrites: a buffer changed, through the cache or in memory, while
//     it was being drained
//
// Freshly allocated regions are filled with 0xA5 so that playing memory
// nobody wrote is audible in a capture.
package sim
