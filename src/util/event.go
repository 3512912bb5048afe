package util

import (
	"context"
	"sync"
	"time"
)

// An Eventer is a type that can emit events through an Emitter.
type Eventer interface {
	Events() *Emitter
}

// Emitter broadcasts events to all registered listeners. Every listener
// receives events in the order they were emitted. The zero value is ready to
// use.
type Emitter struct {
	// The release attribute determines how much time the event should be
	// buffered to prevent the emission of duplicate events.
	// A zero value will disable buffering.
	Release time.Duration

	listeners map[*listener]struct{}
	lock      sync.RWMutex

	release map[interface{}]struct{}
}

type listener struct {
	ctx    context.Context
	out    chan interface{}
	signal chan struct{}

	lock  sync.Mutex
	queue []interface{}
}

func (l *listener) push(event interface{}) {
	l.lock.Lock()
	l.queue = append(l.queue, event)
	l.lock.Unlock()
	select {
	case l.signal <- struct{}{}:
	default:
	}
}

func (l *listener) pump() {
	defer close(l.out)
	for {
		select {
		case <-l.ctx.Done():
			return
		case <-l.signal:
		}
		l.lock.Lock()
		pending := l.queue
		l.queue = nil
		l.lock.Unlock()

		for _, event := range pending {
			select {
			case l.out <- event:
			case <-l.ctx.Done():
				return
			}
		}
	}
}

// Events implements the Eventer interface.
func (emitter *Emitter) Events() *Emitter {
	return emitter
}

func (emitter *Emitter) init() {
	emitter.lock.RLock()
	shouldInit := emitter.listeners == nil
	emitter.lock.RUnlock()
	if shouldInit {
		emitter.lock.Lock()
		if emitter.listeners == nil {
			emitter.listeners = map[*listener]struct{}{}
			emitter.release = map[interface{}]struct{}{}
		}
		emitter.lock.Unlock()
	}
}

func (emitter *Emitter) broadcast(event interface{}) {
	emitter.lock.RLock()
	defer emitter.lock.RUnlock()
	for l := range emitter.listeners {
		l.push(event)
	}
}

// Emit sends the event to all listeners without blocking. Events must be
// comparable when Release is set.
func (emitter *Emitter) Emit(event interface{}) {
	emitter.init()

	if emitter.Release == 0 {
		emitter.broadcast(event)
		return
	}

	// Check wether the event is already scheduled.
	emitter.lock.Lock()
	if _, ok := emitter.release[event]; ok {
		emitter.lock.Unlock()
		return
	}
	emitter.release[event] = struct{}{}
	emitter.lock.Unlock()

	go func() {
		time.Sleep(emitter.Release)

		emitter.lock.Lock()
		delete(emitter.release, event)
		emitter.lock.Unlock()

		emitter.broadcast(event)
	}()
}

// Listen registers a new listener. Once the context is cancelled the listener
// is removed and the returned channel is closed.
func (emitter *Emitter) Listen(ctx context.Context) <-chan interface{} {
	emitter.init()

	l := &listener{
		ctx:    ctx,
		out:    make(chan interface{}),
		signal: make(chan struct{}, 1),
	}
	emitter.lock.Lock()
	emitter.listeners[l] = struct{}{}
	emitter.lock.Unlock()

	go func() {
		<-ctx.Done()
		emitter.lock.Lock()
		delete(emitter.listeners, l)
		emitter.lock.Unlock()
	}()
	go l.pump()
	return l.out
}
