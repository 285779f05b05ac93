// Package session implements the candidate-facing assessment session: a
// single event-driven controller that walks an ordered question list
// through timed reading, answering, and inter-question pause phases,
// records one response per question, and submits the result for scoring.
package session

import "fmt"

// Phase is the controller's current sub-state within the session lifecycle.
type Phase string

// Event drives a phase transition.
type Event string

const (
	PhaseNotStarted       Phase = "not_started"
	PhaseReading          Phase = "reading"
	PhaseAnswering        Phase = "answering"
	PhaseTransitioning    Phase = "transitioning"
	PhaseComplete         Phase = "complete"
	PhaseSubmitting       Phase = "submitting"
	PhaseSubmitted        Phase = "submitted"
	PhaseSubmissionFailed Phase = "submission_failed"
	PhaseBlocked          Phase = "blocked"
)

const (
	EventBegin     Event = "begin"      // NotStarted -> Reading
	EventRestore   Event = "restore"    // NotStarted -> Complete (resumed, all answered)
	EventBlock     Event = "block"      // any non-terminal -> Blocked (fatal)
	EventRecord    Event = "record"     // Reading -> Answering
	EventLock      Event = "lock"       // Answering -> Transitioning
	EventFinish    Event = "finish"     // Answering -> Complete (last question)
	EventNext      Event = "next"       // Transitioning -> Reading
	EventSubmit    Event = "submit"     // Complete|SubmissionFailed -> Submitting
	EventSubmitOK  Event = "submit_ok"  // Submitting -> Submitted
	EventSubmitErr Event = "submit_err" // Submitting -> SubmissionFailed
)

// Transition applies one event to the current phase. Transitions are
// strictly linear per question; anything else is a programming defect and
// comes back as an error, never a silent no-op.
func Transition(current Phase, event Event) (Phase, error) {
	if event == EventBlock && current != PhaseSubmitted {
		return PhaseBlocked, nil
	}

	switch current {
	case PhaseNotStarted:
		switch event {
		case EventBegin:
			return PhaseReading, nil
		case EventRestore:
			return PhaseComplete, nil
		}
	case PhaseReading:
		if event == EventRecord {
			return PhaseAnswering, nil
		}
	case PhaseAnswering:
		switch event {
		case EventLock:
			return PhaseTransitioning, nil
		case EventFinish:
			return PhaseComplete, nil
		}
	case PhaseTransitioning:
		if event == EventNext {
			return PhaseReading, nil
		}
	case PhaseComplete:
		if event == EventSubmit {
			return PhaseSubmitting, nil
		}
	case PhaseSubmitting:
		switch event {
		case EventSubmitOK:
			return PhaseSubmitted, nil
		case EventSubmitErr:
			return PhaseSubmissionFailed, nil
		}
	case PhaseSubmissionFailed:
		if event == EventSubmit {
			return PhaseSubmitting, nil
		}
	case PhaseSubmitted, PhaseBlocked:
		// terminal
	default:
		return current, fmt.Errorf("unknown phase %q", current)
	}
	return current, invalidTransition(current, event)
}

func invalidTransition(phase Phase, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", phase, event)
}
