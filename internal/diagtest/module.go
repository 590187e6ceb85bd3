// Package diagtest holds the peripheral test modules: self-contained
// interactive procedures that each validate one peripheral category and
// produce a typed result record.
package diagtest

import (
	"context"
	"fmt"
)

// ID identifies a test category.
type ID string

const (
	IDKeyboard  ID = "keyboard"
	IDUSB       ID = "usb"
	IDWebcam    ID = "webcam"
	IDAudio     ID = "audio"
	IDTPM       ID = "tpm"
	IDBluetooth ID = "bluetooth"
	IDWiFi      ID = "wifi"
)

// State is the lifecycle position of a test module.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateRunning
	StateCompleted
	StateSkipped
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateSkipped:
		return "skipped"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Details is the category-specific payload of a result. The concrete types
// form a closed set, one per test category.
type Details interface {
	Kind() ID
}

// Result is the common envelope every test produces. It is created once when
// the test finishes (or is abandoned) and never mutated afterwards.
type Result struct {
	ID      ID      `json:"id"`
	Success bool    `json:"success"`
	Message string  `json:"message"`
	Error   string  `json:"error,omitempty"`
	Details Details `json:"details,omitempty"`
}

// Module is the lifecycle contract shared by all peripheral tests.
//
// Initialize allocates scratch resources and performs capability checks; a
// failure means the test cannot run on this machine and should be skipped.
// Execute drives the procedure to completion and blocks until the operator
// finishes, declines, or abandons it; device handles must be released on
// every exit path. Result and FormattedResult are valid only after Execute
// returns. Cleanup is idempotent.
type Module interface {
	ID() ID
	State() State
	Initialize(ctx context.Context) error
	Execute(ctx context.Context) error
	Result() Result
	FormattedResult() string
	Cleanup() error
}

// Prompter is the operator interaction surface a test module drives. The
// terminal implementation lives in internal/termui; tests substitute a
// scripted one.
type Prompter interface {
	// Notify shows a progress or status message.
	Notify(msg string)
	// Confirm asks a yes/no question and blocks for the answer.
	Confirm(prompt string) (bool, error)
}

// KeyEvent is one observed key press, already normalized to a slot name in
// the physical layout.
type KeyEvent struct {
	Key string
	// Finish is set when the operator requested early completion instead of
	// pressing another key.
	Finish bool
}

// KeySource delivers raw key presses for the keyboard test. After a Finish
// event the source releases the input device and closes its channel; calling
// Events again resumes capture. Close must restore the input device to its
// previous state.
type KeySource interface {
	Events(ctx context.Context) (<-chan KeyEvent, error)
	Close() error
}
