package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultLoopCapacity bounds the callback queue between producers and the loop
const DefaultLoopCapacity = 256

// Loop executes posted callbacks in FIFO order on a single goroutine
// Thread-Safety:
//   - Post: any goroutine (input reader, timers, file watcher)
//   - Callbacks: run only on the Run goroutine, so effect state needs no locks
type Loop struct {
	queue   chan func()
	done    chan struct{}
	once    sync.Once
	running atomic.Bool

	crashMu sync.RWMutex
	onCrash func(any)
}

// NewLoop creates a loop with the given queue capacity
func NewLoop(capacity int) *Loop {
	if capacity <= 0 {
		capacity = DefaultLoopCapacity
	}
	return &Loop{
		queue: make(chan func(), capacity),
		done:  make(chan struct{}),
	}
}

// SetCrashHandler installs the panic handler for callbacks, nil re-panics
func (l *Loop) SetCrashHandler(fn func(any)) {
	l.crashMu.Lock()
	l.onCrash = fn
	l.crashMu.Unlock()
}

// Post queues fn for execution, returns false once the loop has stopped
// Blocks while the queue is full
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}

	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Run drains the queue until ctx is cancelled
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return nil
	}
	defer l.once.Do(func() { close(l.done) })

	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.queue:
			l.exec(fn)
		}
	}
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.crashMu.RLock()
			handler := l.onCrash
			l.crashMu.RUnlock()
			if handler == nil {
				panic(r)
			}
			handler(r)
		}
	}()
	fn()
}
