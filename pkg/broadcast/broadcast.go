// Package broadcast provides a fan-out channel server used as the
// change-notification bus between the state caches and roster sessions.
package broadcast

import "context"

// Subscriber channels are buffered and delivery never blocks: when a
// subscriber falls behind, the oldest undelivered value is dropped in
// favour of the newest. Values are change hints, not state; a consumer
// that misses one recomputes from the source of truth on the next.
const listenerBuffer = 16

type Server[T any] struct {
	source         chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
}

func NewServer[T any]() *Server[T] {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server[T]{
		source:         make(chan T),
		listeners:      make([]chan T, 0),
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
	}

	go s.serve()

	return s
}

// Broadcast delivers val to every current subscriber. Blocks until the
// serve loop has accepted the value, never on the subscribers themselves.
func (s *Server[T]) Broadcast(val T) {
	select {
	case s.source <- val:
	case <-s.ctx.Done():
	}
}

// Subscribe returns a new channel that will receive all broadcasts.
// Every channel returned by Subscribe must eventually be passed to
// Unsubscribe.
func (s *Server[T]) Subscribe() <-chan T {
	listener := make(chan T, listenerBuffer)

	select {
	case s.addListener <- listener:
	case <-s.ctx.Done():
		close(listener)
	}

	return listener
}

// Unsubscribe removes a subscription and closes its channel.
func (s *Server[T]) Unsubscribe(channel <-chan T) {
	select {
	case s.removeListener <- channel:
	case <-s.ctx.Done():
	}
}

// Close stops the serve loop and closes all subscriber channels.
func (s *Server[T]) Close() {
	s.cancel()
}

func (s *Server[T]) serve() {
	defer func() {
		for _, listener := range s.listeners {
			if listener != nil {
				close(listener)
			}
		}
	}()

	for {
		select {
		case <-s.ctx.Done():
			return
		case newListener := <-s.addListener:
			s.listeners = append(s.listeners, newListener)
		case listenerToRemove := <-s.removeListener:
			for i, ch := range s.listeners {
				if ch == listenerToRemove {
					s.listeners[i] = s.listeners[len(s.listeners)-1]
					s.listeners = s.listeners[:len(s.listeners)-1]
					close(ch)

					break
				}
			}
		case val := <-s.source:
			for _, listener := range s.listeners {
				deliver(listener, val)
			}
		}
	}
}

// deliver sends without blocking, evicting the oldest buffered value when
// the listener's buffer is full.
func deliver[T any](listener chan T, val T) {
	for {
		select {
		case listener <- val:
			return
		default:
		}

		select {
		case <-listener:
		default:
		}
	}
}
