package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parley-cli/parley/internal/audio"
	"github.com/parley-cli/parley/internal/brain"
	"github.com/parley-cli/parley/internal/fsm"
	"github.com/parley-cli/parley/internal/ipc"
	"github.com/parley-cli/parley/internal/language"
	"github.com/parley-cli/parley/internal/recognize"
)

type fakePrompter struct {
	lines []string
}

// ReadLine pops the next scripted line; with the script exhausted it blocks
// until the context is cancelled.
func (f *fakePrompter) ReadLine(ctx context.Context) (string, error) {
	if len(f.lines) == 0 {
		<-ctx.Done()
		return "", ctx.Err()
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

type fakeCapturer struct {
	clip  audio.Clip
	err   error
	calls int
}

func (f *fakeCapturer) Capture(context.Context) (audio.Clip, error) {
	f.calls++
	return f.clip, f.err
}

type fakeTranscriber struct {
	result     recognize.Result
	lastLocale string
	calls      int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ audio.Clip, locale string) recognize.Result {
	f.calls++
	f.lastLocale = locale
	return f.result
}

type fakeResponder struct {
	reply      brain.Reply
	lastPrompt string
	calls      int
}

func (f *fakeResponder) Respond(_ context.Context, prompt string) brain.Reply {
	f.calls++
	f.lastPrompt = prompt
	return f.reply
}

type spokenLine struct {
	text string
	lang string
}

type fakeSpeaker struct {
	err    error
	spoken []spokenLine
}

func (f *fakeSpeaker) Speak(_ context.Context, text, lang string) error {
	f.spoken = append(f.spoken, spokenLine{text: text, lang: lang})
	return f.err
}

type fixture struct {
	controller *Controller
	capture    *fakeCapturer
	transcribe *fakeTranscriber
	respond    *fakeResponder
	speak      *fakeSpeaker
	out        *bytes.Buffer
}

func newFixture(t *testing.T, lines ...string) *fixture {
	t.Helper()

	f := &fixture{
		capture:    &fakeCapturer{clip: audio.Clip{PCM: make([]byte, 640), SampleRate: audio.SampleRate}},
		transcribe: &fakeTranscriber{result: recognize.Result{Kind: recognize.KindOk, Text: "hello"}},
		respond:    &fakeResponder{reply: brain.Reply{Kind: brain.KindOk, Text: "hi there"}},
		speak:      &fakeSpeaker{},
		out:        &bytes.Buffer{},
	}
	f.controller = NewController(
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		language.Builtin(),
		f.capture,
		f.transcribe,
		f.respond,
		f.speak,
		nil,
		&fakePrompter{lines: lines},
		f.out,
	)
	return f
}

func TestRunFullTurnSpeaksReply(t *testing.T) {
	f := newFixture(t, "1", "", "q")

	require.NoError(t, f.controller.Run(context.Background()))

	require.Equal(t, 1, f.capture.calls)
	require.Equal(t, "en-US", f.transcribe.lastLocale)
	require.Equal(t, "hello", f.respond.lastPrompt)
	require.Equal(t, []spokenLine{{text: "hi there", lang: "en"}}, f.speak.spoken)

	output := f.out.String()
	require.Contains(t, output, messageWelcome)
	require.Contains(t, output, "You (English (US)): hello")
	require.Contains(t, output, "AI Response:\nhi there")
	require.Contains(t, output, messageGoodbye)
	require.Contains(t, output, messageClosed)
	require.Equal(t, fsm.StateTerminated, f.controller.State())
}

func TestRunQuitWithoutTurnsMakesNoAdapterCalls(t *testing.T) {
	f := newFixture(t, "1", "q")

	require.NoError(t, f.controller.Run(context.Background()))

	require.Zero(t, f.capture.calls)
	require.Zero(t, f.transcribe.calls)
	require.Zero(t, f.respond.calls)
	require.Empty(t, f.speak.spoken)
	require.Equal(t, fsm.StateTerminated, f.controller.State())
}

func TestRunQuitIsCaseInsensitiveAndTrimmed(t *testing.T) {
	f := newFixture(t, "1", "  Q ")
	require.NoError(t, f.controller.Run(context.Background()))
	require.Zero(t, f.capture.calls)
}

func TestRunInvalidMenuKeyRepromptsIndefinitely(t *testing.T) {
	f := newFixture(t, "9", "x", "2", "q")

	require.NoError(t, f.controller.Run(context.Background()))

	require.Equal(t, "Hindi (India)", f.controller.Language().DisplayName)
	require.Equal(t, 2, strings.Count(f.out.String(), messageInvalidChoice))
}

func TestRunLanguageReselectionIsIdempotent(t *testing.T) {
	f := newFixture(t, "2", "c", "2", "q")

	require.NoError(t, f.controller.Run(context.Background()))

	profile := f.controller.Language()
	require.Equal(t, "2", profile.Key)
	require.Equal(t, "hi-IN", profile.RecognitionLocale)
	require.Equal(t, "hi", profile.SynthesisLocale)
}

func TestRunResponderUnavailableSpeaksFixedApology(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.respond.reply = brain.Reply{Kind: brain.KindUnavailable}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Equal(t, []spokenLine{{text: spokenUnavailable, lang: "en"}}, f.speak.spoken)
}

func TestRunBlockedReplySpokenWithReason(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.respond.reply = brain.Reply{Kind: brain.KindBlocked, BlockReason: "SAFETY"}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Len(t, f.speak.spoken, 1)
	require.Contains(t, f.speak.spoken[0].text, "(SAFETY)")
	require.Contains(t, f.speak.spoken[0].text, "blocked by the AI for safety reasons")
}

func TestRunUnrecognizedSpeechSpeaksRetryPromptOnce(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.transcribe.result = recognize.Result{Kind: recognize.KindFailed, Reason: recognize.ReasonUnrecognized}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Equal(t, []spokenLine{{text: spokenUnrecognized, lang: "en"}}, f.speak.spoken)
	require.Zero(t, f.respond.calls)
}

func TestRunRecognizerUnavailableIsConsoleOnly(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.transcribe.result = recognize.Result{Kind: recognize.KindFailed, Reason: recognize.ReasonUnavailable}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Empty(t, f.speak.spoken)
	require.Zero(t, f.respond.calls)
	require.Contains(t, f.out.String(), infoRecognizerUnavailable)
}

func TestRunCaptureTimeoutSpeaksNoSpeechPrompt(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.capture.err = audio.ErrNoSpeech

	require.NoError(t, f.controller.Run(context.Background()))

	require.Contains(t, f.out.String(), infoNoSpeech)
	require.Equal(t, []spokenLine{{text: spokenNoSpeech, lang: "en"}}, f.speak.spoken)
	require.Zero(t, f.transcribe.calls)
}

func TestRunEmptyClipPrintsInfoAndSpeaksNoSpeechPrompt(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.transcribe.result = recognize.Result{Kind: recognize.KindNoSpeech}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Contains(t, f.out.String(), infoNoSpeech)
	require.Equal(t, []spokenLine{{text: spokenNoSpeech, lang: "en"}}, f.speak.spoken)
	require.Zero(t, f.respond.calls)
}

func TestRunDeviceErrorIsConsoleOnly(t *testing.T) {
	f := newFixture(t, "1", "", "q")
	f.capture.err = &audio.DeviceError{Op: "open", Err: errors.New("no pulse server")}

	require.NoError(t, f.controller.Run(context.Background()))

	require.Empty(t, f.speak.spoken)
	require.Zero(t, f.transcribe.calls)
	require.Contains(t, f.out.String(), "Microphone error:")
}

func TestRunSpeakerFailureNeverEndsTheLoop(t *testing.T) {
	f := newFixture(t, "1", "", "", "q")
	f.speak.err = errors.New("player exploded")

	require.NoError(t, f.controller.Run(context.Background()))

	require.Equal(t, 2, f.capture.calls)
	require.Contains(t, f.out.String(), infoSpeechFailed)
}

func TestRunInterruptDuringPromptExitsCleanly(t *testing.T) {
	f := newFixture(t, "1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.controller.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after interrupt")
	}
	require.Equal(t, fsm.StateTerminated, f.controller.State())
	require.Contains(t, f.out.String(), messageInterrupted)
	require.Contains(t, f.out.String(), messageClosed)
}

func TestHandleStatusAndQuit(t *testing.T) {
	f := newFixture(t, "1")

	done := make(chan error, 1)
	go func() { done <- f.controller.Run(context.Background()) }()

	// wait for the menu selection to land
	require.Eventually(t, func() bool {
		return f.controller.State() == fsm.StateIdle
	}, 2*time.Second, 5*time.Millisecond)

	status := f.controller.Handle(context.Background(), ipc.Request{Command: ipc.CommandStatus})
	require.True(t, status.OK)
	require.Equal(t, string(fsm.StateIdle), status.State)
	require.Equal(t, "English (US)", status.Language)

	quit := f.controller.Handle(context.Background(), ipc.Request{Command: ipc.CommandQuit})
	require.True(t, quit.OK)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after quit command")
	}
	require.Equal(t, fsm.StateTerminated, f.controller.State())
}

func TestHandleUnknownCommand(t *testing.T) {
	f := newFixture(t)

	resp := f.controller.Handle(context.Background(), ipc.Request{Command: "dance"})
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "unknown command")
}
