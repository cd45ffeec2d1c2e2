package planning

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Checkbox states. These must remain untyped string constants for
// statekit.StateID compatibility.
const (
	StateUnchecked = "unchecked"
	StateChecked   = "checked"
)

// Checkbox events.
const (
	EventToggle  = "toggle"
	EventCheck   = "check"
	EventUncheck = "uncheck"
)

// CheckboxMachine drives a single completion item between its two states.
type CheckboxMachine struct {
	interpreter *statekit.Interpreter[struct{}]
}

// NewCheckboxMachine builds a machine starting in the given state.
func NewCheckboxMachine(checked bool) (*CheckboxMachine, error) {
	initial := StateUnchecked
	if checked {
		initial = StateChecked
	}

	builder := statekit.NewMachine[struct{}]("checkbox").
		WithInitial(statekit.StateID(initial)).
		WithContext(struct{}{})

	builder.State(StateUnchecked).
		On(EventToggle).Target(StateChecked).
		On(EventCheck).Target(StateChecked).
		Done()

	builder.State(StateChecked).
		On(EventToggle).Target(StateUnchecked).
		On(EventUncheck).Target(StateUnchecked).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build checkbox machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &CheckboxMachine{interpreter: interpreter}, nil
}

// Send applies event. Events without a transition from the current state
// (check while checked, uncheck while unchecked) leave the state unchanged.
func (m *CheckboxMachine) Send(event string) {
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
}

func (m *CheckboxMachine) Current() string {
	return string(m.interpreter.State().Value)
}

func (m *CheckboxMachine) Checked() bool {
	return m.Current() == StateChecked
}

// NextCheckboxState returns the checked value after applying event to current.
func NextCheckboxState(current bool, event string) bool {
	m, err := NewCheckboxMachine(current)
	if err != nil {
		panic(err)
	}
	m.Send(event)
	return m.Checked()
}
