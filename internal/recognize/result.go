// Package recognize turns captured audio clips into text via a remote
// speech-to-text service.
package recognize

// Kind classifies one recognition attempt.
type Kind int

const (
	// KindOk means the service produced a usable transcript.
	KindOk Kind = iota
	// KindNoSpeech means the clip carried no audio worth sending.
	KindNoSpeech
	// KindFailed means the attempt produced no transcript; Reason says why.
	KindFailed
)

// Reason refines KindFailed.
type Reason int

const (
	ReasonNone Reason = iota
	// ReasonUnrecognized means the service heard audio but could not
	// make out any words.
	ReasonUnrecognized
	// ReasonUnavailable means the service could not be reached or refused
	// the request for capacity reasons.
	ReasonUnavailable
	// ReasonInternal covers every other request failure.
	ReasonInternal
)

// Result is the outcome of one recognition attempt. Callers branch on Kind
// rather than inspecting errors.
type Result struct {
	Kind   Kind
	Text   string
	Reason Reason
}

func ok(text string) Result {
	return Result{Kind: KindOk, Text: text}
}

func failed(reason Reason) Result {
	return Result{Kind: KindFailed, Reason: reason}
}
