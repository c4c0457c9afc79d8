package engine

import (
	"fmt"
	"strings"

	"ebirth/internal/registry/models"
	"ebirth/internal/validate"
)

// step pairs a state's prompt with the handler for the answer given at it.
// apply validates the newest answer, updates the draft and names the next
// state; on validation failure the state does not advance.
type step struct {
	prompt func(d *Draft) string
	apply  func(e *Engine, d *Draft, answer string) (State, *validate.FieldError)
}

const (
	msgTooManyAttempts = "Too many invalid attempts. Please dial the service code to start again."
	msgCancelled       = "Registration cancelled. Thank you."
	msgHWFatherScope   = "Adding father's details through the health worker channel is not yet supported. Submit without them or visit a Registry office."
)

var helpTopics = map[string]string{
	"1": "This is the official Government of Ghana service to register births from your mobile phone for free.",
	"2": "Registering via USSD is FREE. Fees for the printed certificate may apply at the Registry office.",
	"3": "You need: baby's name and date of birth, mother's full name and Ghana Card number. Father's details are optional.",
	"4": "For help, call the Births and Deaths Registry toll-free line 0800-123-456 (Mon-Fri, 8am-5pm).",
}

var transitions = map[State]step{
	StateMainMenu: {
		prompt: func(*Draft) string {
			return "Welcome to the Ghana e-Birth Service:\n" +
				"1. Register a Birth (Parent/Guardian)\n" +
				"2. Register a Birth (Health Worker)\n" +
				"3. Verify a Registration\n" +
				"4. Help"
		},
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			choice, err := validate.MenuChoice(answer, "1", "2", "3", "4")
			if err != nil {
				return StateMainMenu, err
			}
			switch choice {
			case "1":
				d.Flow = FlowParent
				return StateParentChildName, nil
			case "2":
				d.Flow = FlowHealthWorker
				return StateHWWorkerID, nil
			case "3":
				d.Flow = FlowVerify
				return StateVerifyEnterUBRN, nil
			default:
				d.Flow = FlowHelp
				return StateHelpMenu, nil
			}
		},
	},

	// --- Parent/Guardian flow ---

	StateParentChildName: {
		prompt: staticPrompt("Enter baby's full name"),
		apply:  nameStep(StateParentDOB, func(d *Draft, v string) { d.ChildName = v }),
	},
	StateParentDOB: {
		prompt: staticPrompt("Enter baby's date of birth (YYYY-MM-DD)"),
		apply:  dobStep(StateParentSex),
	},
	StateParentSex: {
		prompt: staticPrompt("Select baby's sex:\n1. Male\n2. Female"),
		apply:  sexStep(StateParentPlace),
	},
	StateParentPlace: {
		prompt: staticPrompt("Enter place of birth (district or town, e.g. Accra)"),
		apply:  placeStep(StateParentMotherName),
	},
	StateParentMotherName: {
		prompt: staticPrompt("Enter Mother's full name (as on Ghana Card)"),
		apply:  nameStep(StateParentMotherNIN, func(d *Draft, v string) { d.MotherName = v }),
	},
	StateParentMotherNIN: {
		prompt: staticPrompt("Enter Mother's Ghana Card number (e.g. GHA-123456789-0)"),
		apply:  ninStep(StateParentAskFather, func(d *Draft, v string) { d.MotherNIN = v }),
	},
	StateParentAskFather: {
		// The summary rides on this prompt, so "2. No, submit now" is an
		// informed confirmation and finishes the flow in one answer.
		prompt: func(d *Draft) string {
			return summary(d) + "\n\nAdd Father's details?\n1. Yes\n2. No, submit now"
		},
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			choice, err := validate.MenuChoice(answer, "1", "2")
			if err != nil {
				return StateParentAskFather, err
			}
			if choice == "1" {
				return StateParentFatherName, nil
			}
			return StateParentDone, nil
		},
	},
	StateParentFatherName: {
		prompt: staticPrompt("Enter Father's full name"),
		apply:  nameStep(StateParentFatherNIN, func(d *Draft, v string) { d.FatherName = v }),
	},
	StateParentFatherNIN: {
		prompt: staticPrompt("Enter Father's Ghana Card number (e.g. GHA-123456789-0)"),
		apply:  ninStep(StateParentConfirm, func(d *Draft, v string) { d.FatherNIN = v }),
	},
	StateParentConfirm: {
		prompt: func(d *Draft) string {
			return summary(d) + "\n\n1. Confirm & Submit\n2. Cancel"
		},
		apply: confirmStep(StateParentConfirm, StateParentDone, StateParentCancelled),
	},

	// --- Health Worker flow ---

	StateHWWorkerID: {
		prompt: staticPrompt("Enter your 6-digit Health Worker ID"),
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			id, err := validate.HealthWorkerID(answer)
			if err != nil {
				return StateHWWorkerID, err
			}
			d.WorkerID = id
			return StateHWChildName, nil
		},
	},
	StateHWChildName: {
		prompt: staticPrompt("Enter baby's full name"),
		apply:  nameStep(StateHWDOB, func(d *Draft, v string) { d.ChildName = v }),
	},
	StateHWDOB: {
		prompt: staticPrompt("Enter baby's date of birth (YYYY-MM-DD)"),
		apply:  dobStep(StateHWSex),
	},
	StateHWSex: {
		prompt: staticPrompt("Select baby's sex:\n1. Male\n2. Female"),
		apply:  sexStep(StateHWPlace),
	},
	StateHWPlace: {
		prompt: staticPrompt("Enter place of birth (district or town, e.g. Accra)"),
		apply:  placeStep(StateHWMotherName),
	},
	StateHWMotherName: {
		prompt: staticPrompt("Enter Mother's full name (as on Ghana Card)"),
		apply:  nameStep(StateHWMotherNIN, func(d *Draft, v string) { d.MotherName = v }),
	},
	StateHWMotherNIN: {
		prompt: staticPrompt("Enter Mother's Ghana Card number (e.g. GHA-123456789-0)"),
		apply:  ninStep(StateHWPhone, func(d *Draft, v string) { d.MotherNIN = v }),
	},
	StateHWPhone: {
		prompt: staticPrompt("Enter the parent's mobile number for SMS (e.g. 0241234567)"),
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			phone, err := validate.Phone(answer)
			if err != nil {
				return StateHWPhone, err
			}
			d.ContactPhone = phone
			return StateHWAskFather, nil
		},
	},
	StateHWAskFather: {
		prompt: staticPrompt("Add Father's details?\n1. Yes\n2. No"),
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			choice, err := validate.MenuChoice(answer, "1", "2")
			if err != nil {
				return StateHWAskFather, err
			}
			if choice == "1" {
				return StateHWFatherUnsupported, nil
			}
			return StateHWConfirm, nil
		},
	},
	StateHWConfirm: {
		prompt: func(d *Draft) string {
			return fmt.Sprintf("Confirm for HW %s:\n%s\nSMS to: %s\n\n1. Confirm & Submit\n2. Cancel",
				d.WorkerID, summary(d), d.ContactPhone)
		},
		apply: confirmStep(StateHWConfirm, StateHWDone, StateHWCancelled),
	},

	// --- Verify flow ---

	StateVerifyEnterUBRN: {
		prompt: staticPrompt("Enter the 15-character UBRN (e.g. GA0125081000017)"),
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			// Structural and checksum checks belong to the codec; any
			// answer moves to the terminal result.
			d.VerifyCandidate = strings.TrimSpace(answer)
			return StateVerifyResult, nil
		},
	},

	// --- Help flow ---

	StateHelpMenu: {
		prompt: staticPrompt("HELP MENU:\n1. About\n2. Cost\n3. Requirements\n4. Contact"),
		apply: func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
			choice, err := validate.MenuChoice(answer, "1", "2", "3", "4")
			if err != nil {
				return StateHelpMenu, err
			}
			d.HelpTopic = choice
			return StateHelpShow, nil
		},
	},
}

func staticPrompt(text string) func(*Draft) string {
	return func(*Draft) string { return text }
}

func nameStep(next State, set func(*Draft, string)) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		name, err := validate.Name(answer)
		if err != nil {
			return "", err
		}
		set(d, name)
		return next, nil
	}
}

func ninStep(next State, set func(*Draft, string)) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		nin, err := validate.NIN(answer)
		if err != nil {
			return "", err
		}
		set(d, nin)
		return next, nil
	}
}

func dobStep(next State) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		dob, err := validate.DateOfBirth(answer, e.now())
		if err != nil {
			return "", err
		}
		d.DateOfBirth = dob
		return next, nil
	}
}

func sexStep(next State) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		switch strings.ToUpper(strings.TrimSpace(answer)) {
		case "1", "M":
			d.Sex = models.SexMale
		case "2", "F":
			d.Sex = models.SexFemale
		default:
			return "", &validate.FieldError{
				Kind:    validate.InvalidMenuChoice,
				Message: "Invalid choice. Reply 1 or M for Male, 2 or F for Female.",
			}
		}
		return next, nil
	}
}

func placeStep(next State) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		district, err := validate.Place(answer)
		if err != nil {
			return "", err
		}
		d.District = district
		return next, nil
	}
}

func confirmStep(self, done, cancelled State) func(*Engine, *Draft, string) (State, *validate.FieldError) {
	return func(e *Engine, d *Draft, answer string) (State, *validate.FieldError) {
		choice, err := validate.MenuChoice(answer, "1", "2")
		if err != nil {
			return self, err
		}
		if choice == "1" {
			return done, nil
		}
		return cancelled, nil
	}
}

// summary renders the confirmation block shown before submission.
func summary(d *Draft) string {
	var b strings.Builder
	b.WriteString("Please confirm:")
	fmt.Fprintf(&b, "\nName: %s", d.ChildName)
	fmt.Fprintf(&b, "\nDOB: %s", d.DateOfBirth.Format(validate.DateLayout))
	fmt.Fprintf(&b, "\nSex: %s", d.Sex)
	fmt.Fprintf(&b, "\nPlace: %s", d.District.Name)
	fmt.Fprintf(&b, "\nMother: %s", d.MotherName)
	if d.FatherName != "" {
		fmt.Fprintf(&b, "\nFather: %s", d.FatherName)
	}
	return b.String()
}

func terminalText(state State, d *Draft) string {
	switch state {
	case StateParentCancelled, StateHWCancelled:
		return msgCancelled
	case StateHWFatherUnsupported:
		return msgHWFatherScope
	case StateHelpShow:
		return helpTopics[d.HelpTopic]
	case StateErrorTerminal:
		return msgTooManyAttempts
	}
	return ""
}
