package session

import (
	"context"

	"github.com/parley-cli/parley/internal/audio"
	"github.com/parley-cli/parley/internal/brain"
	"github.com/parley-cli/parley/internal/recognize"
)

// Capturer records one utterance from the microphone.
type Capturer interface {
	Capture(ctx context.Context) (audio.Clip, error)
}

// Transcriber converts a captured clip to text in the given locale.
type Transcriber interface {
	Transcribe(ctx context.Context, clip audio.Clip, locale string) recognize.Result
}

// Responder produces a reply for one prompt.
type Responder interface {
	Respond(ctx context.Context, prompt string) brain.Reply
}

// Speaker voices text in the given language, blocking until playback ends.
type Speaker interface {
	Speak(ctx context.Context, text, lang string) error
}

// Cues emits listening earcons.
type Cues interface {
	ListenStart()
	ListenStop()
	Error()
}

// Prompter reads one console line, honoring context cancellation.
type Prompter interface {
	ReadLine(ctx context.Context) (string, error)
}

// noopCues preserves session flow when no cue player is wired.
type noopCues struct{}

func (noopCues) ListenStart() {}
func (noopCues) ListenStop()  {}
func (noopCues) Error()       {}

// noopSpeaker keeps the loop silent but alive when no voice is wired.
type noopSpeaker struct{}

func (noopSpeaker) Speak(context.Context, string, string) error { return nil }
