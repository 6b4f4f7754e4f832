package fsm

import "github.com/rs/zerolog"

// State is one behaviour of a Machine. Enter runs once on transition,
// Execute once per tick while the state is active.
type State interface {
	Name() string
	Enter()
	Execute()
}

// Machine holds exactly one active state.
type Machine struct {
	current      State
	log          zerolog.Logger
	onTransition []func(from, to string)
}

func NewMachine(log zerolog.Logger) *Machine {
	return &Machine{log: log}
}

// OnTransition registers a callback invoked before the new state's Enter.
func (m *Machine) OnTransition(fn func(from, to string)) {
	m.onTransition = append(m.onTransition, fn)
}

// TransitionTo makes s the active state and enters it. Enter may itself
// transition again; the last transition wins.
func (m *Machine) TransitionTo(s State) {
	from := m.CurrentName()
	m.current = s
	if s == nil {
		return
	}

	m.log.Debug().Str("from", from).Str("to", s.Name()).Msg("state transition")
	for _, fn := range m.onTransition {
		fn(from, s.Name())
	}
	s.Enter()
}

// Execute runs the active state for one tick.
func (m *Machine) Execute() {
	if m.current != nil {
		m.current.Execute()
	}
}

func (m *Machine) Current() State {
	return m.current
}

func (m *Machine) CurrentName() string {
	if m.current == nil {
		return ""
	}
	return m.current.Name()
}
