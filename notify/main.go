// Package notify fans values out to subscribers.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

const multiplexerTimeout = 200 * time.Millisecond

type subscriber[E any] struct {
	ch      chan E
	comment string
}

// queueSize is how many values may wait for delivery before Send blocks.
const queueSize = 64

type pending[E any] struct {
	e    E
	done chan struct{}
}

// MultiplexerSender is the sending half of a Multiplexer.
type MultiplexerSender[E any] struct {
	m *Multiplexer[E]
}

// Send records e as the current value and queues it for every subscriber.
// Values are delivered in Send order. Subscribers that don't receive within a timeout miss e.
func (ms *MultiplexerSender[E]) Send(e E) {
	ms.m.setCurrent(e)
	ms.m.queue <- pending[E]{e: e}
}

// SendSync is Send, but returns once every subscriber got e (or timed out).
func (ms *MultiplexerSender[E]) SendSync(e E) {
	ms.m.setCurrent(e)
	done := make(chan struct{})
	ms.m.queue <- pending[E]{e: e, done: done}
	<-done
}

func NewMultiplexerSender[E any](comment string) (*MultiplexerSender[E], *Multiplexer[E]) {
	m := &Multiplexer[E]{
		comment: comment,
		queue:   make(chan pending[E], queueSize),
	}
	go m.deliver()
	return &MultiplexerSender[E]{m: m}, m
}

type Multiplexer[E any] struct {
	comment         string
	subscribersLock sync.Mutex
	subscribers     []subscriber[E]
	queue           chan pending[E]
	currentLock     sync.RWMutex
	current         E
	currentSet      bool
}

// Current returns the last value sent; ok is false if nothing was sent yet.
func (m *Multiplexer[E]) Current() (e E, ok bool) {
	m.currentLock.RLock()
	defer m.currentLock.RUnlock()
	return m.current, m.currentSet
}

func (m *Multiplexer[E]) setCurrent(e E) {
	m.currentLock.Lock()
	defer m.currentLock.Unlock()
	m.current = e
	m.currentSet = true
}

func (m *Multiplexer[E]) Subscribe(comment string, c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	m.subscribers = append(m.subscribers, subscriber[E]{
		ch:      c,
		comment: comment,
	})
}

func (m *Multiplexer[E]) Unsubscribe(c chan E) {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	i := slices.IndexFunc(m.subscribers, func(sub subscriber[E]) bool { return sub.ch == c })
	if i == -1 {
		panic("already unsubscribed")
	}
	m.subscribers = slices.Delete(m.subscribers, i, i+1)
}

// Subscribers is the number of current subscribers.
func (m *Multiplexer[E]) Subscribers() int {
	m.subscribersLock.Lock()
	defer m.subscribersLock.Unlock()
	return len(m.subscribers)
}

func (m *Multiplexer[E]) deliver() {
	for p := range m.queue {
		m.send(p.e)
		if p.done != nil {
			close(p.done)
		}
	}
}

func (m *Multiplexer[E]) send(e E) {
	m.subscribersLock.Lock()
	subs := slices.Clone(m.subscribers)
	m.subscribersLock.Unlock()
	for _, sub := range subs {
		select {
		case sub.ch <- e:
		case <-time.After(multiplexerTimeout):
			m.timeout(sub)
		}
	}
}

func (m *Multiplexer[E]) timeout(sub subscriber[E]) {
	zap.S().Warnf("multiplexer %s: subscriber %s timed out", m.comment, sub.comment)
}
