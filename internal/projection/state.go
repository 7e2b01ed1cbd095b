// Package projection holds the client-side read models. Each projection
// owns one snapshot of server state, requests it over the socket, and
// replaces it wholesale when the matching push arrives. Nothing in here
// merges or diffs: the server's payload is the truth, the projection is
// its mirror plus pure view filtering on top.
package projection

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/geekhirusha/chatapp/internal/bus"
	"github.com/geekhirusha/chatapp/internal/socket"
)

// ErrNotSignedIn is returned by operations that require an
// authenticated session.
var ErrNotSignedIn = errors.New("not signed in")

// Phase is a projection's position in its request cycle.
type Phase string

const (
	Uninitialized Phase = "UNINITIALIZED"
	Requested     Phase = "REQUESTED"
	Populated     Phase = "POPULATED"
)

// phaseTransitions defines allowed phase moves. A projection never
// returns to Uninitialized; unsolicited pushes may populate it before
// it ever asked, and repeated refreshes keep it in Requested.
var phaseTransitions = map[Phase][]Phase{
	Uninitialized: {Requested, Populated},
	Requested:     {Requested, Populated},
	Populated:     {Requested, Populated},
}

// PhaseChange is the payload for projection phase events.
type PhaseChange struct {
	Projection string
	From       Phase
	To         Phase
}

// lifecycle tracks one projection's phase and announces transitions.
type lifecycle struct {
	mu      sync.RWMutex
	name    string
	current Phase
	bus     *bus.Bus
}

func newLifecycle(name string, b *bus.Bus) *lifecycle {
	return &lifecycle{
		name:    name,
		current: Uninitialized,
		bus:     b,
	}
}

func (l *lifecycle) phase() Phase {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *lifecycle) transition(to Phase) error {
	l.mu.Lock()
	allowed := phaseTransitions[l.current]
	if !slices.Contains(allowed, to) {
		from := l.current
		l.mu.Unlock()
		return fmt.Errorf("invalid phase transition from %s to %s", from, to)
	}
	from := l.current
	l.current = to
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Publish(bus.E(bus.KindProjectionState, PhaseChange{
			Projection: l.name,
			From:       from,
			To:         to,
		}))
	}
	return nil
}

// Connectivity is the slice of the connection manager projections need:
// the current state plus transition notifications.
type Connectivity interface {
	State() socket.State
	OnConnectivityChange(fn func(socket.State)) func()
}
