package selection

import (
	"github.com/jmylchreest/vecprep/internal/image"
	"github.com/jmylchreest/vecprep/internal/mask"
)

// State is the lifecycle stage of an editing session.
type State int

const (
	// Idle is a new session with no gesture yet.
	Idle State = iota
	// Selecting is a session receiving gestures.
	Selecting
	// Previewing is a session whose mask has been composited for display.
	Previewing
	// Committed is a session whose mask has been applied to the buffer.
	Committed
	// Cancelled is a session that was abandoned.
	Cancelled
)

var stateNames = map[State]string{
	Idle:       "idle",
	Selecting:  "selecting",
	Previewing: "previewing",
	Committed:  "committed",
	Cancelled:  "cancelled",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) closed() bool {
	return s == Committed || s == Cancelled
}

// State returns the session state.
func (e *Engine) State() State {
	return e.state
}

// touch moves an open session into Selecting ahead of a gesture.
func (e *Engine) touch() error {
	if e.state.closed() {
		return ErrSessionClosed
	}
	e.state = Selecting
	return nil
}

// Begin starts accepting gestures. Gestures call it implicitly.
func (e *Engine) Begin() error {
	return e.touch()
}

// Preview returns a copy of the buffer with the mask composited into its alpha.
// The engine's buffer is not modified.
func (e *Engine) Preview() (*image.Buffer, error) {
	if e.state.closed() {
		return nil, ErrSessionClosed
	}
	out, err := mask.Apply(e.buf, e.mask, e.applyMode)
	if err != nil {
		return nil, err
	}
	e.state = Previewing
	return out, nil
}

// Commit applies the mask to the buffer, closes the session and returns the result.
func (e *Engine) Commit() (*image.Buffer, error) {
	if e.state.closed() {
		return nil, ErrSessionClosed
	}
	if err := mask.ApplyInPlace(e.buf, e.mask, e.applyMode); err != nil {
		return nil, err
	}
	e.state = Committed
	e.history.Clear()
	e.logger.Debug("selection committed", "selected", e.mask.Count())
	return e.buf, nil
}

// Cancel abandons the session. The buffer keeps any bulk erases already made.
func (e *Engine) Cancel() error {
	if e.state.closed() {
		return ErrSessionClosed
	}
	e.state = Cancelled
	e.history.Clear()
	e.logger.Debug("selection cancelled")
	return nil
}
