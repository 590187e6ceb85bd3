package diagtest

import (
	"context"
	"fmt"
	"sort"
)

// DefaultKeyboardThreshold is the early-completion key count: once this many
// distinct physical keys were seen, the operator may finish the test without
// covering the full layout.
const DefaultKeyboardThreshold = 70

// KeyboardTest validates the physical keyboard by tracking which layout
// slots have been pressed. Duplicate presses are idempotent. The test
// succeeds automatically once every slot was seen, or via explicit operator
// confirmation after the early threshold is reached.
type KeyboardTest struct {
	state     State
	prompter  Prompter
	keys      KeySource
	threshold int

	pressed map[string]bool
	result  Result
}

// NewKeyboard builds a keyboard test. A threshold <= 0 selects the default.
func NewKeyboard(p Prompter, ks KeySource, threshold int) *KeyboardTest {
	if threshold <= 0 || threshold > len(keyboardLayout) {
		threshold = DefaultKeyboardThreshold
	}
	return &KeyboardTest{
		state:     StateUninitialized,
		prompter:  p,
		keys:      ks,
		threshold: threshold,
		pressed:   make(map[string]bool),
	}
}

func (t *KeyboardTest) ID() ID       { return IDKeyboard }
func (t *KeyboardTest) State() State { return t.state }

func (t *KeyboardTest) Initialize(_ context.Context) error {
	if t.keys == nil {
		err := fmt.Errorf("no key capture source available")
		t.result = Result{ID: IDKeyboard, Message: "initialization failed", Error: err.Error()}
		return err
	}
	t.state = StateInitialized
	return nil
}

func (t *KeyboardTest) Execute(ctx context.Context) error {
	if t.state != StateInitialized {
		return fmt.Errorf("keyboard test not initialized")
	}
	t.state = StateRunning
	defer t.keys.Close()

	events, err := t.keys.Events(ctx)
	if err != nil {
		t.finish(StateAborted, Result{
			ID:      IDKeyboard,
			Message: "key capture failed",
			Error:   err.Error(),
			Details: t.details(),
		})
		return nil
	}

	t.prompter.Notify(fmt.Sprintf(
		"Press every key on the keyboard (%d keys). Press Esc twice to finish early.",
		len(keyboardLayout)))

	for {
		select {
		case <-ctx.Done():
			t.finish(StateAborted, Result{
				ID:      IDKeyboard,
				Message: "test interrupted by operator",
				Details: t.details(),
			})
			return nil

		case ev, ok := <-events:
			if !ok {
				t.finish(StateAborted, Result{
					ID:      IDKeyboard,
					Message: "key capture ended unexpectedly",
					Details: t.details(),
				})
				return nil
			}

			if ev.Finish {
				if t.handleFinish() {
					return nil
				}
				// The source handed the input device back for the finish
				// prompts; re-open it to resume capture.
				events, err = t.keys.Events(ctx)
				if err != nil {
					t.finish(StateAborted, Result{
						ID:      IDKeyboard,
						Message: "key capture failed",
						Error:   err.Error(),
						Details: t.details(),
					})
					return nil
				}
				continue
			}

			t.press(ev.Key)

			if t.pressedCount() == len(keyboardLayout) {
				// Full coverage is an objective pass, no confirmation needed.
				t.finish(StateCompleted, Result{
					ID:      IDKeyboard,
					Success: true,
					Message: "all keys registered",
					Details: t.details(),
				})
				return nil
			}
		}
	}
}

// handleFinish processes an early-completion request. Returns true when the
// test is over.
func (t *KeyboardTest) handleFinish() bool {
	count := t.pressedCount()
	if count >= t.threshold {
		ok, err := t.prompter.Confirm(fmt.Sprintf(
			"%d of %d keys registered. Mark keyboard test as passed?", count, len(keyboardLayout)))
		if err == nil && ok {
			t.finish(StateCompleted, Result{
				ID:      IDKeyboard,
				Success: true,
				Message: fmt.Sprintf("completed early at %d of %d keys", count, len(keyboardLayout)),
				Details: t.details(),
			})
			return true
		}
	}

	ok, err := t.prompter.Confirm("Skip the keyboard test?")
	if err != nil || ok {
		t.finish(StateSkipped, Result{
			ID:      IDKeyboard,
			Message: "test skipped by operator",
			Details: t.details(),
		})
		return true
	}

	t.prompter.Notify(fmt.Sprintf("Continuing: %d of %d keys registered.", count, len(keyboardLayout)))
	return false
}

// press marks the slots a raw key resolves to. Unknown keys are ignored and
// repeats do not double count.
func (t *KeyboardTest) press(raw string) {
	marked := false
	for _, slot := range slotsForKey(raw) {
		if inLayout(slot) && !t.pressed[slot] {
			t.pressed[slot] = true
			marked = true
		}
	}
	if marked {
		t.prompter.Notify(fmt.Sprintf("%d of %d keys registered", t.pressedCount(), len(keyboardLayout)))
	}
}

func (t *KeyboardTest) pressedCount() int { return len(t.pressed) }

func (t *KeyboardTest) details() KeyboardDetails {
	var missing []string
	for _, k := range keyboardLayout {
		if !t.pressed[k] {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return KeyboardDetails{
		TotalKeys:   len(keyboardLayout),
		PressedKeys: t.pressedCount(),
		MissingKeys: missing,
	}
}

func (t *KeyboardTest) finish(state State, res Result) {
	t.state = state
	t.result = res
}

func (t *KeyboardTest) Result() Result { return t.result }

func (t *KeyboardTest) FormattedResult() string {
	d, _ := t.result.Details.(KeyboardDetails)
	if t.result.Success {
		return fmt.Sprintf("Keyboard Test: PASS\nTotal keys: %d\nKeys registered: %d",
			d.TotalKeys, d.PressedKeys)
	}
	if t.result.Error != "" {
		return fmt.Sprintf("Keyboard Test: FAIL\nError: %s", t.result.Error)
	}
	return fmt.Sprintf("Keyboard Test: FAIL\nReason: %s\nKeys registered: %d of %d",
		t.result.Message, d.PressedKeys, d.TotalKeys)
}

func (t *KeyboardTest) Cleanup() error {
	if t.keys != nil {
		return t.keys.Close()
	}
	return nil
}

func inLayout(slot string) bool {
	for _, k := range keyboardLayout {
		if k == slot {
			return true
		}
	}
	return false
}
