// ABOUTME: DMA sound output package
// ABOUTME: Ring buffer, sample clock and mix lock between mixer and device
// Package dma keeps a wrap-safe sample clock for a real-time playback
// device and manages the ring buffer that a mixer paints into while the
// device callback drains it from its own thread.
//
// An Output owns everything: the device, the ring buffer, the clock and the
// gate. The mixer polls SoundTime, paints ahead of it between BeginPainting
// and Submit (or inside Paint), and advances PaintedTime. The device callback
// copies from the ring buffer under the same gate.
//
// Example:
//
//	out := dma.New(dma.Options{Device: output.NewMalgo()})
//	if !out.Init(44) {
//	    // keep running silently
//	}
//	defer out.Shutdown()
//
//	soundTime := out.SoundTime()
//	err := out.Paint(func(rb *dma.RingBuffer) error {
//	    rb.WriteSamples(offset, samples)
//	    return nil
//	})
package dma
