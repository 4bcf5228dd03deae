package state

import (
	"errors"
	"sync"
)

// Phase is one stage of a room's lifecycle.
type Phase string

const (
	Lobby    Phase = "lobby"
	Playing  Phase = "playing"
	Finished Phase = "finished"
)

// ErrTransitionNotAllowed is returned when a phase transition is not allowed.
var ErrTransitionNotAllowed = errors.New("phase transition not allowed")

// Machine enforces the one-way room lifecycle: lobby -> playing -> finished.
// Finished is terminal.
type Machine struct {
	current     Phase
	transitions map[Phase][]Phase
	mutex       sync.RWMutex
}

func NewMachine() *Machine {
	return &Machine{
		current: Lobby,
		transitions: map[Phase][]Phase{
			Lobby:    {Playing},
			Playing:  {Finished},
			Finished: {},
		},
	}
}

func (m *Machine) Current() Phase {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.current
}

// Is reports whether the machine is currently in the given phase.
func (m *Machine) Is(p Phase) bool {
	return m.Current() == p
}

func (m *Machine) Transition(to Phase) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, allowed := range m.transitions[m.current] {
		if allowed == to {
			m.current = to
			return nil
		}
	}
	return ErrTransitionNotAllowed
}
