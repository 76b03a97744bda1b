// ABOUTME: Mix lock serializing ring buffer access
// ABOUTME: Pairs the mixer's begin/submit bracket with the device callback's copy
package dma

import (
	"sync"
	"sync/atomic"
)

// Gate is the mutual exclusion shared by the mixer and the device callback.
// The callback takes it with Lock/Unlock around its copy; the mixer brackets
// its writes with Begin/End, where End without a matching Begin is a no-op.
type Gate struct {
	mu   sync.Mutex
	held atomic.Bool
}

// Lock acquires the gate for the device callback
func (g *Gate) Lock() {
	g.mu.Lock()
}

// Unlock releases the gate taken by Lock
func (g *Gate) Unlock() {
	g.mu.Unlock()
}

// Begin acquires the gate for the mixer. Begin and End must be called from
// the same goroutine.
func (g *Gate) Begin() {
	g.mu.Lock()
	g.held.Store(true)
}

// End releases the gate taken by Begin and reports whether it was held.
// The gate does not track which goroutine called Begin: End from any
// goroutine releases it. Only the single mixer goroutine may call End.
func (g *Gate) End() bool {
	if !g.held.CompareAndSwap(true, false) {
		return false
	}
	g.mu.Unlock()
	return true
}

// Held reports whether the mixer currently holds the gate
func (g *Gate) Held() bool {
	return g.held.Load()
}
