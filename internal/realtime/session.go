package realtime

import (
	"fmt"
	"sync"
)

// State is where a connection is in its lifecycle.
type State int

const (
	Connecting State = iota
	Authenticating
	Authorized
	Subscribed
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Authenticating:
		return "authenticating"
	case Authorized:
		return "authorized"
	case Subscribed:
		return "subscribed"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var transitions = map[State][]State{
	Connecting:     {Authenticating, Closed},
	Authenticating: {Authorized, Closed},
	Authorized:     {Subscribed, Closed},
	Subscribed:     {Closed},
}

// session is the subscriber side of one websocket connection. Frames go
// through send and are written by a single writer goroutine.
type session struct {
	id string

	mu    sync.Mutex
	state State

	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSession(id string, buffer int) *session {
	if buffer < 1 {
		buffer = 1
	}
	return &session{
		id:    id,
		state: Connecting,
		send:  make(chan []byte, buffer),
		done:  make(chan struct{}),
	}
}

func (s *session) ID() string { return s.id }

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *session) advance(to State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, next := range transitions[s.state] {
		if next == to {
			s.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal connection transition %s -> %s", s.state, to)
}

// Deliver never blocks; a full buffer or a closed session drops the frame.
func (s *session) Deliver(frame []byte) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.send <- frame:
		return true
	default:
		return false
	}
}

// shutdown moves to Closed and reports whether this call did it.
func (s *session) shutdown() bool {
	closed := false
	s.once.Do(func() {
		s.mu.Lock()
		s.state = Closed
		s.mu.Unlock()
		close(s.done)
		closed = true
	})
	return closed
}
