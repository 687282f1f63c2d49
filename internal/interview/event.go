package interview

import "interview-screening-bot/internal/scoring"

// Event is an inbound message for one candidate.
type Event interface {
	event()
}

// StartCommand begins or restarts an interview.
type StartCommand struct {
	Username string
}

// StopCommand asks for a process shutdown. Only admins may issue it.
type StopCommand struct{}

// TextMessage is free text from the candidate.
type TextMessage struct {
	Text     string
	Username string
}

func (StartCommand) event() {}
func (StopCommand) event()  {}
func (TextMessage) event()  {}

// EffectKind says what the transport should do with an Effect.
type EffectKind int

const (
	// EffectPrompt sends the messages and waits for the next reply.
	EffectPrompt EffectKind = iota + 1
	// EffectReprompt rejects the input; the state did not change.
	EffectReprompt
	EffectInProgress
	EffectAlreadyCompleted
	EffectNotStarted
	EffectCompleted
	// EffectRetryLater reports a server-side failure to the candidate.
	EffectRetryLater
	EffectPermissionDenied
	// EffectShutdown asks the process to stop after the messages are sent.
	EffectShutdown
)

func (k EffectKind) String() string {
	switch k {
	case EffectPrompt:
		return "prompt"
	case EffectReprompt:
		return "reprompt"
	case EffectInProgress:
		return "in_progress"
	case EffectAlreadyCompleted:
		return "already_completed"
	case EffectNotStarted:
		return "not_started"
	case EffectCompleted:
		return "completed"
	case EffectRetryLater:
		return "retry_later"
	case EffectPermissionDenied:
		return "permission_denied"
	case EffectShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Effect is the outcome of handling one event.
type Effect struct {
	Kind     EffectKind
	Messages []string
	// State is the session state after the event; zero when no session exists.
	State     State
	SessionID string
	// Decision is set on EffectCompleted.
	Decision scoring.Decision
}
