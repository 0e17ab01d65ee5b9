// SPDX-License-Identifier: EPL-2.0

// Package hal defines the hardware the playback core drives.
//
// Output covers the DMA controller, the DAC's serial interface and the
// fast interrupt raised at the end of every transfer. CodecControl covers
// the DAC's register port (volume and clocking).
//
// Two implementations ship with the module:
//
//   - hal/sim: a simulated DMA engine with a non-coherent cache model,
//     driven explicitly by tests or by a render loop
//   - hal/otohal: a host sound device through github.com/ebitengine/oto/v3,
//     where the audio callback plays the role of the interrupt
//
// Board support packages implement the same interfaces against real
// registers.
package hal
