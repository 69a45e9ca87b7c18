package shutdown

import (
	"os"
	"sync"
)

// signalLatch remembers the first shutdown signal and calls onForce when a
// second one arrives.
type signalLatch struct {
	mu      sync.Mutex
	first   os.Signal
	count   int
	onForce func()
}

// receive records sig and reports whether it was the first signal.
func (l *signalLatch) receive(sig os.Signal) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.count++
	if l.count == 1 {
		l.first = sig
		return true
	}
	if l.onForce != nil {
		l.onForce()
	}
	return false
}

func (l *signalLatch) signal() os.Signal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.first
}
