// SPDX-License-Identifier: EPL-2.0

package hal

// Output is the audio output peripheral: a DMA channel feeding the DAC and
// the interrupt it raises when a transfer completes.
//
// ArmDMA, AckInterrupt and the handler passed to RegisterFIQ run in
// interrupt context. Implementations must not block or allocate there.
type Output interface {
	// AllocDMA returns size bytes of memory the DMA engine can read.
	AllocDMA(size int) ([]byte, error)
	// Configure sets up the DAC. It returns ErrRateUnsupported when the
	// peripheral cannot run at rate.
	Configure(rate, bits, channels int) error

	// ArmDMA starts draining buf. The transfer-complete interrupt fires when
	// the whole buffer has been sent.
	ArmDMA(buf []byte)
	DisarmDMA()
	PauseDMA()
	ResumeDMA()

	// RegisterFIQ installs the transfer-complete handler; nil masks the
	// interrupt and removes the handler.
	RegisterFIQ(handler func())
	AckInterrupt()

	// FlushCache writes CPU cache lines covering buf back to memory so the
	// DMA engine sees the latest data.
	FlushCache(buf []byte)
}

// CodecControl is the DAC's control port.
type CodecControl interface {
	SetVolumeHw(leftDb, rightDb float64) error
	SetSampleRate(rate int) error
}
