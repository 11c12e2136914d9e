package fsm

import "fmt"

type State string

type Event string

const (
	StateSelectingLanguage State = "selecting_language"
	StateIdle              State = "idle"
	StateListening         State = "listening"
	StateTranscribing      State = "transcribing"
	StateResponding        State = "responding"
	StateSpeaking          State = "speaking"
	StateTerminated        State = "terminated"
)

const (
	EventLanguageSelected Event = "language_selected"
	EventChangeLanguage   Event = "change_language"
	EventListen           Event = "listen"
	EventCaptured         Event = "captured"
	EventCaptureFailed    Event = "capture_failed"
	EventTranscribed      Event = "transcribed"
	EventTranscribeFailed Event = "transcribe_failed"
	EventReplied          Event = "replied"
	EventSpoken           Event = "spoken"
	EventQuit             Event = "quit"
)

// Transition applies one event to the current state. EventQuit is accepted
// from every live state so an interrupt can terminate mid-turn;
// StateTerminated is absorbing.
func Transition(current State, event Event) (State, error) {
	if current == StateTerminated {
		return current, invalidTransition(current, event)
	}
	if event == EventQuit {
		return StateTerminated, nil
	}

	switch current {
	case StateSelectingLanguage:
		switch event {
		case EventLanguageSelected:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateIdle:
		switch event {
		case EventListen:
			return StateListening, nil
		case EventChangeLanguage:
			return StateSelectingLanguage, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateListening:
		switch event {
		case EventCaptured:
			return StateTranscribing, nil
		case EventCaptureFailed:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateTranscribing:
		switch event {
		case EventTranscribed:
			return StateResponding, nil
		case EventTranscribeFailed:
			return StateSpeaking, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateResponding:
		switch event {
		case EventReplied:
			return StateSpeaking, nil
		default:
			return current, invalidTransition(current, event)
		}
	case StateSpeaking:
		switch event {
		case EventSpoken:
			return StateIdle, nil
		default:
			return current, invalidTransition(current, event)
		}
	default:
		return current, fmt.Errorf("unknown state %q", current)
	}
}

func invalidTransition(state State, event Event) error {
	return fmt.Errorf("invalid transition: %s --(%s)--> ?", state, event)
}
