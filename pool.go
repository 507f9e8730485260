package bvision

import (
	"sync"

	"gocv.io/x/gocv"
)

// framePool recycles the Mats frames are copied into on submit so steady
// state capture doesn't allocate
type framePool struct {
	// pool of idle Mats
	mats   chan gocv.Mat
	mu     sync.Mutex
	closed bool
}

// newFramePool creates a pool holding up to size idle Mats
func newFramePool(size int) *framePool {
	return &framePool{
		mats: make(chan gocv.Mat, size),
	}
}

// Get returns an idle Mat or a new one if the pool is empty
func (p *framePool) Get() gocv.Mat {
	select {
	case m, ok := <-p.mats:
		if ok {
			return m
		}
	default:
	}

	return gocv.NewMat()
}

// Return a Mat to the pool, it is closed if the pool is full or closed
func (p *framePool) Return(m gocv.Mat) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		m.Close()
		return
	}

	select {
	case p.mats <- m:
	default:
		// pool is full
		m.Close()
	}
}

// Close the pool and all Mats in it
func (p *framePool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}

	p.closed = true
	close(p.mats)

	for m := range p.mats {
		m.Close()
	}
}
