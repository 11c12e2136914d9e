// Package session drives the turn-taking conversation loop between the
// console, the microphone, and the remote speech and model services.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/parley-cli/parley/internal/audio"
	"github.com/parley-cli/parley/internal/brain"
	"github.com/parley-cli/parley/internal/fsm"
	"github.com/parley-cli/parley/internal/ipc"
	"github.com/parley-cli/parley/internal/language"
	"github.com/parley-cli/parley/internal/recognize"
	"github.com/parley-cli/parley/internal/voice"
)

// Controller owns the session state machine and routes results between the
// capture, transcription, response, and speech collaborators.
type Controller struct {
	logger     *slog.Logger
	registry   language.Registry
	capture    Capturer
	transcribe Transcriber
	respond    Responder
	speak      Speaker
	cues       Cues
	prompter   Prompter
	out        io.Writer

	mu      sync.RWMutex
	state   fsm.State
	current language.Profile
	cancel  context.CancelFunc
}

// NewController wires the session collaborators with safe fallbacks for the
// optional ones.
func NewController(
	logger *slog.Logger,
	registry language.Registry,
	capture Capturer,
	transcribe Transcriber,
	respond Responder,
	speak Speaker,
	cues Cues,
	prompter Prompter,
	out io.Writer,
) *Controller {
	if speak == nil {
		speak = noopSpeaker{}
	}
	if cues == nil {
		cues = noopCues{}
	}

	return &Controller{
		logger:     logger,
		registry:   registry,
		capture:    capture,
		transcribe: transcribe,
		respond:    respond,
		speak:      speak,
		cues:       cues,
		prompter:   prompter,
		out:        out,
		state:      fsm.StateSelectingLanguage,
	}
}

// State returns the current state snapshot.
func (c *Controller) State() fsm.State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Language returns the currently selected profile.
func (c *Controller) Language() language.Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// transition applies one event to the state machine.
func (c *Controller) transition(event fsm.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fsm.Transition(c.state, event)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// Run executes the conversation loop until the user quits, a quit command
// arrives over the control socket, or the context is interrupted. It returns
// nil on every user-initiated exit.
func (c *Controller) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	fmt.Fprintln(c.out, messageWelcome)
	defer fmt.Fprintln(c.out, messageClosed)

	if err := c.selectLanguage(ctx); err != nil {
		return c.finish(err)
	}

	for {
		if ctx.Err() != nil {
			return c.finish(ctx.Err())
		}

		fmt.Fprintf(c.out, "\n%s", promptIdle)
		line, err := c.prompter.ReadLine(ctx)
		if err != nil {
			return c.finish(err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "q":
			_ = c.transition(fsm.EventQuit)
			fmt.Fprintln(c.out, messageGoodbye)
			return c.finish(nil)
		case "c":
			if err := c.transition(fsm.EventChangeLanguage); err != nil {
				return err
			}
			if err := c.selectLanguage(ctx); err != nil {
				return c.finish(err)
			}
		default:
			// Bare Enter and anything unrecognized both start a turn.
			if err := c.turn(ctx); err != nil {
				return c.finish(err)
			}
		}
	}
}

// finish folds interrupt/quit cancellation into a clean exit.
func (c *Controller) finish(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		_ = c.transition(fsm.EventQuit)
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, messageInterrupted)
		return nil
	}
	return err
}

// selectLanguage presents the menu and blocks until a valid key is chosen.
// Invalid keys re-prompt indefinitely.
func (c *Controller) selectLanguage(ctx context.Context) error {
	for {
		fmt.Fprintf(c.out, "\n%s\n", messageMenuHeader)
		for _, profile := range c.registry.List() {
			fmt.Fprintf(c.out, "%s: %s\n", profile.Key, profile.DisplayName)
		}
		fmt.Fprint(c.out, promptMenuChoice)

		line, err := c.prompter.ReadLine(ctx)
		if err != nil {
			return err
		}

		profile, ok := c.registry.Resolve(strings.TrimSpace(line))
		if !ok {
			fmt.Fprintln(c.out, messageInvalidChoice)
			continue
		}

		c.mu.Lock()
		c.current = profile
		c.mu.Unlock()

		if err := c.transition(fsm.EventLanguageSelected); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nSelected language: %s (Code: %s)\n",
			profile.DisplayName, profile.RecognitionLocale)
		return nil
	}
}

// turn runs one listen/transcribe/respond/speak cycle.
func (c *Controller) turn(ctx context.Context) error {
	profile := c.Language()

	if err := c.transition(fsm.EventListen); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n%s\n", messageCalibrating)
	fmt.Fprintf(c.out, "Listening in %s. Please start speaking...\n", profile.DisplayName)

	c.cues.ListenStart()
	clip, err := c.capture.Capture(ctx)
	c.cues.ListenStop()

	if err != nil {
		return c.handleCaptureFailure(ctx, profile, err)
	}

	if err := c.transition(fsm.EventCaptured); err != nil {
		return err
	}
	fmt.Fprintln(c.out, messageProcessing)

	result := c.transcribe.Transcribe(ctx, clip, profile.RecognitionLocale)
	switch result.Kind {
	case recognize.KindOk:
		if err := c.transition(fsm.EventTranscribed); err != nil {
			return err
		}
		return c.respondAndSpeak(ctx, profile, result.Text)
	case recognize.KindNoSpeech:
		if err := c.transition(fsm.EventTranscribeFailed); err != nil {
			return err
		}
		fmt.Fprintln(c.out, infoNoSpeech)
		c.say(ctx, spokenNoSpeech, profile.SynthesisLocale)
		return c.transition(fsm.EventSpoken)
	default:
		return c.handleTranscribeFailure(ctx, profile, result)
	}
}

// handleCaptureFailure distinguishes the benign no-speech timeout from real
// device trouble. Both return the loop to idle.
func (c *Controller) handleCaptureFailure(ctx context.Context, profile language.Profile, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if errors.Is(err, audio.ErrNoSpeech) {
		c.logger.Info("no speech detected within the time limit")
		fmt.Fprintln(c.out, infoNoSpeech)
		if transErr := c.transition(fsm.EventCaptureFailed); transErr != nil {
			return transErr
		}
		c.say(ctx, spokenNoSpeech, profile.SynthesisLocale)
		return nil
	}

	var devErr *audio.DeviceError
	if errors.As(err, &devErr) {
		c.logger.Error("microphone capture failed",
			slog.String("op", devErr.Op),
			slog.String("error", devErr.Error()))
	} else {
		c.logger.Error("capture failed", slog.String("error", err.Error()))
	}
	fmt.Fprintf(c.out, "Microphone error: %v\n", err)
	c.cues.Error()
	return c.transition(fsm.EventCaptureFailed)
}

// handleTranscribeFailure speaks the retry prompt only for the benign
// unrecognized-speech kind; service trouble is console-only so a broken
// network does not trigger a speak/listen retry loop.
func (c *Controller) handleTranscribeFailure(ctx context.Context, profile language.Profile, result recognize.Result) error {
	if err := c.transition(fsm.EventTranscribeFailed); err != nil {
		return err
	}

	switch result.Reason {
	case recognize.ReasonUnrecognized:
		c.logger.Info("speech was not recognized")
		fmt.Fprintln(c.out, "Speech Recognition Info: Unable to recognize speech.")
		c.say(ctx, spokenUnrecognized, profile.SynthesisLocale)
	case recognize.ReasonUnavailable:
		fmt.Fprintln(c.out, infoRecognizerUnavailable)
		c.cues.Error()
	default:
		fmt.Fprintln(c.out, infoRecognizerFailed)
		c.cues.Error()
	}

	return c.transition(fsm.EventSpoken)
}

// respondAndSpeak forwards the transcript to the model and voices whatever
// comes back, including the fixed apologies for non-Ok reply kinds.
func (c *Controller) respondAndSpeak(ctx context.Context, profile language.Profile, transcript string) error {
	separator := strings.Repeat("-", 30)
	fmt.Fprintln(c.out, separator)
	fmt.Fprintf(c.out, "You (%s): %s\n", profile.DisplayName, transcript)
	fmt.Fprintln(c.out, separator)

	reply := c.respond.Respond(ctx, transcript)
	spoken := replyText(reply)

	fmt.Fprintln(c.out, "AI Response:")
	fmt.Fprintln(c.out, spoken)

	if err := c.transition(fsm.EventReplied); err != nil {
		return err
	}
	c.say(ctx, spoken, profile.SynthesisLocale)
	return c.transition(fsm.EventSpoken)
}

// replyText maps every reply kind to the text the user hears.
func replyText(reply brain.Reply) string {
	switch reply.Kind {
	case brain.KindOk:
		return reply.Text
	case brain.KindBlocked:
		return fmt.Sprintf(spokenBlockedFormat, reply.BlockReason)
	case brain.KindEmpty:
		return spokenEmptyReply
	case brain.KindUnavailable:
		return spokenUnavailable
	default:
		return spokenFailedReply
	}
}

// say voices text best-effort. Unsupported locales get a distinct console
// message; nothing here ever fails the loop.
func (c *Controller) say(ctx context.Context, text, lang string) {
	err := c.speak.Speak(ctx, text, lang)
	if err == nil {
		return
	}

	var unsupported *voice.UnsupportedLanguageError
	if errors.As(err, &unsupported) {
		c.logger.Error("synthesis language unsupported", slog.String("lang", unsupported.Lang))
		fmt.Fprintf(c.out, "Sorry, I cannot speak in %s.\n", unsupported.Lang)
		return
	}

	c.logger.Error("speech output failed", slog.String("error", err.Error()))
	fmt.Fprintln(c.out, infoSpeechFailed)
}

// Handle serves control-socket commands for the running session.
func (c *Controller) Handle(_ context.Context, req ipc.Request) ipc.Response {
	switch req.Command {
	case ipc.CommandStatus:
		return ipc.Response{
			OK:       true,
			State:    string(c.State()),
			Language: c.Language().DisplayName,
			Message:  "status",
		}
	case ipc.CommandQuit:
		c.mu.RLock()
		cancel := c.cancel
		c.mu.RUnlock()
		if cancel == nil {
			return ipc.Response{OK: false, State: string(c.State()), Error: "session not running"}
		}
		cancel()
		return ipc.Response{OK: true, State: string(c.State()), Message: "quit requested"}
	default:
		return ipc.Response{OK: false, State: string(c.State()), Error: fmt.Sprintf("unknown command: %s", req.Command)}
	}
}
