// Package engine holds the menu state machine. Sessions are stateless on the
// server: every turn replays the caller's full accumulated answer list from
// the main menu, so any replica can serve any turn. Replay is pure — the
// terminal registration and verification actions are returned to the caller
// instead of executed here.
package engine

import (
	"time"

	"ebirth/internal/validate"
)

// State names a node in the menu tree.
type State string

const (
	StateMainMenu State = "main_menu"

	StateParentChildName  State = "parent.child_name"
	StateParentDOB        State = "parent.dob"
	StateParentSex        State = "parent.sex"
	StateParentPlace      State = "parent.place"
	StateParentMotherName State = "parent.mother_name"
	StateParentMotherNIN  State = "parent.mother_nin"
	StateParentAskFather  State = "parent.ask_father"
	StateParentFatherName State = "parent.father_name"
	StateParentFatherNIN  State = "parent.father_nin"
	StateParentConfirm    State = "parent.confirm"
	StateParentDone       State = "parent.done"
	StateParentCancelled  State = "parent.cancelled"

	StateHWWorkerID          State = "hw.worker_id"
	StateHWChildName         State = "hw.child_name"
	StateHWDOB               State = "hw.dob"
	StateHWSex               State = "hw.sex"
	StateHWPlace             State = "hw.place"
	StateHWMotherName        State = "hw.mother_name"
	StateHWMotherNIN         State = "hw.mother_nin"
	StateHWPhone             State = "hw.phone"
	StateHWAskFather         State = "hw.ask_father"
	StateHWConfirm           State = "hw.confirm"
	StateHWDone              State = "hw.done"
	StateHWCancelled         State = "hw.cancelled"
	StateHWFatherUnsupported State = "hw.father_unsupported"

	StateVerifyEnterUBRN State = "verify.enter_ubrn"
	StateVerifyResult    State = "verify.result"

	StateHelpMenu State = "help.menu"
	StateHelpShow State = "help.show"

	StateErrorTerminal State = "error.terminal"
)

// Action is the side effect a terminal state asks the service layer to run.
type Action string

const (
	ActionNone     Action = ""
	ActionRegister Action = "register"
	ActionVerify   Action = "verify"
)

// Outcome is the result of replaying one accumulated answer list.
type Outcome struct {
	State    State
	Terminal bool

	// Prompt is the response text for every outcome except the register
	// and verify actions, whose text depends on store results.
	Prompt string

	Action          Action
	VerifyCandidate string
	Draft           *Draft

	// FieldErr is set when the newest answer failed validation and the
	// caller is being re-prompted.
	FieldErr *validate.FieldError
}

// maxAttempts bounds consecutive invalid answers at one prompt before the
// session is terminated.
const maxAttempts = 3

// Engine replays accumulated input against the menu tree.
type Engine struct {
	now func() time.Time
}

type Option func(*Engine)

// WithClock fixes the engine's notion of now; tests only.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Replay walks the answer list from the main menu. Each answer is validated
// against the state it lands on; an invalid answer consumes its slot and
// re-prompts, and three consecutive invalid answers end the session.
func (e *Engine) Replay(callerPhone string, answers []string) Outcome {
	draft := &Draft{CallerPhone: callerPhone}
	state := StateMainMenu
	attempts := 0
	var lastErr *validate.FieldError

	for _, answer := range answers {
		if isTerminal(state) {
			// The transport ended the session already; stray trailing
			// answers carry no meaning.
			break
		}
		next, fieldErr := transitions[state].apply(e, draft, answer)
		if fieldErr != nil {
			attempts++
			lastErr = fieldErr
			if attempts >= maxAttempts {
				return Outcome{
					State:    StateErrorTerminal,
					Terminal: true,
					Prompt:   msgTooManyAttempts,
					Draft:    draft,
					FieldErr: fieldErr,
				}
			}
			continue
		}
		attempts = 0
		lastErr = nil
		state = next
	}

	switch state {
	case StateParentDone, StateHWDone:
		return Outcome{State: state, Terminal: true, Action: ActionRegister, Draft: draft}
	case StateVerifyResult:
		return Outcome{
			State:           state,
			Terminal:        true,
			Action:          ActionVerify,
			VerifyCandidate: draft.VerifyCandidate,
			Draft:           draft,
		}
	}

	if isTerminal(state) {
		return Outcome{State: state, Terminal: true, Prompt: terminalText(state, draft), Draft: draft}
	}

	prompt := transitions[state].prompt(draft)
	if lastErr != nil {
		prompt = lastErr.Message + "\n" + prompt
	}
	return Outcome{State: state, Prompt: prompt, Draft: draft, FieldErr: lastErr}
}

var terminalStates = map[State]bool{
	StateParentDone:          true,
	StateParentCancelled:     true,
	StateHWDone:              true,
	StateHWCancelled:         true,
	StateHWFatherUnsupported: true,
	StateVerifyResult:        true,
	StateHelpShow:            true,
	StateErrorTerminal:       true,
}

func isTerminal(s State) bool { return terminalStates[s] }
