// Package app wires configuration, logging, and the session collaborators
// behind the parley CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/parley-cli/parley/internal/audio"
	"github.com/parley-cli/parley/internal/brain"
	"github.com/parley-cli/parley/internal/cli"
	"github.com/parley-cli/parley/internal/config"
	"github.com/parley-cli/parley/internal/cue"
	"github.com/parley-cli/parley/internal/doctor"
	"github.com/parley-cli/parley/internal/ipc"
	"github.com/parley-cli/parley/internal/logging"
	"github.com/parley-cli/parley/internal/recognize"
	"github.com/parley-cli/parley/internal/session"
	"github.com/parley-cli/parley/internal/version"
	"github.com/parley-cli/parley/internal/voice"
)

type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	r := Runner{Stdin: stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := cli.Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, cli.HelpText("parley"))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, cli.HelpText("parley"))
		return 0
	}

	if parsed.Command == cli.CommandVersion {
		fmt.Fprintln(r.Stdout, version.String())
		return 0
	}

	logRuntime, err := logging.New()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: setup logging: %v\n", err)
		return 1
	}
	defer func() { _ = logRuntime.Close() }()

	logger := r.Logger
	if logger == nil {
		logger = logRuntime.Logger
	}

	// A local .env may carry the API key; its absence is not an error.
	_ = godotenv.Load()

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		logger.Error("load config failed", "error", err.Error())
		return 1
	}
	for _, w := range cfgLoaded.Warnings {
		msg := w.Message
		if w.Line > 0 {
			msg = fmt.Sprintf("line %d: %s", w.Line, w.Message)
		}
		fmt.Fprintf(r.Stderr, "warning: %s\n", msg)
		logger.Warn("config warning", "line", w.Line, "message", w.Message)
	}

	logger.Info("command start",
		"command", parsed.Command,
		"config", cfgLoaded.Path,
		"log", logRuntime.Path,
	)

	switch parsed.Command {
	case cli.CommandDoctor:
		report := doctor.Run(cfgLoaded)
		fmt.Fprintln(r.Stdout, report.String())
		if report.OK() {
			return 0
		}
		return 1
	case cli.CommandDevices:
		return r.commandDevices(ctx)
	case cli.CommandStatus:
		return r.commandStatus(ctx)
	case cli.CommandQuit:
		return r.commandQuit(ctx)
	case cli.CommandChat:
		return r.commandChat(ctx, cfgLoaded.Config, logger)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandDevices(ctx context.Context) int {
	devices, err := audio.ListDevices(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if len(devices) == 0 {
		fmt.Fprintln(r.Stdout, "no audio devices found")
		return 1
	}

	for _, device := range devices {
		defaultMark := " "
		if device.Default {
			defaultMark = "*"
		}
		availability := "yes"
		if !device.Available {
			availability = "no"
		}
		muted := "no"
		if device.Muted {
			muted = "yes"
		}
		fmt.Fprintf(
			r.Stdout,
			"%s id=%s | description=%q | state=%s | available=%s | muted=%s\n",
			defaultMark,
			device.ID,
			device.Description,
			device.State,
			availability,
			muted,
		)
	}

	return 0
}

func (r Runner) commandStatus(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandStatus)
	if !handled {
		fmt.Fprintln(r.Stdout, "not running")
		return 0
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	if resp.Language != "" {
		fmt.Fprintf(r.Stdout, "%s (%s)\n", resp.State, resp.Language)
	} else {
		fmt.Fprintln(r.Stdout, resp.State)
	}
	return 0
}

func (r Runner) commandQuit(ctx context.Context) int {
	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	resp, handled, err := tryForward(ctx, socketPath, ipc.CommandQuit)
	if !handled {
		fmt.Fprintln(r.Stderr, "error: no active parley session")
		return 1
	}
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if resp.Message != "" {
		fmt.Fprintln(r.Stdout, resp.Message)
	}
	return 0
}

func (r Runner) commandChat(ctx context.Context, cfg config.Config, logger *slog.Logger) int {
	registry, err := config.BuildRegistry(cfg)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}

	// The capture device is the one startup dependency that is fatal when
	// absent; everything else degrades to a spoken or printed apology.
	selection, err := audio.SelectDevice(ctx, cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		logger.Error("audio device selection failed", "error", err.Error())
		fmt.Fprintf(r.Stderr, "Fatal error: no usable microphone: %v\n", err)
		return 1
	}
	if selection.Warning != "" {
		fmt.Fprintf(r.Stderr, "warning: %s\n", selection.Warning)
	}

	mic := audio.NewMicrophone(selection.Device, audio.Options{
		MaxWait:   time.Duration(cfg.Listen.MaxWaitSeconds) * time.Second,
		MaxPhrase: time.Duration(cfg.Listen.MaxPhraseSeconds) * time.Second,
		Calibrate: time.Duration(cfg.Listen.CalibrateSeconds) * time.Second,
	})

	apiKey := strings.TrimSpace(os.Getenv(cfg.Gemini.APIKeyEnv))
	if apiKey == "" {
		logger.Warn("model credential not set", "env", cfg.Gemini.APIKeyEnv)
		fmt.Fprintf(r.Stderr, "warning: %s is not set; AI replies will be unavailable\n", cfg.Gemini.APIKeyEnv)
	}
	responder := brain.NewGemini(cfg.Gemini.Model, cfg.Gemini.BaseURL, apiKey, logger)

	var transcriber session.Transcriber
	googleTranscriber, closeTranscriber, err := recognize.NewGoogle(ctx, logger)
	if err != nil {
		logger.Error("speech client unavailable", "error", err.Error())
		fmt.Fprintf(r.Stderr, "warning: speech recognition unavailable: %v\n", err)
		transcriber = unavailableTranscriber{}
	} else {
		transcriber = googleTranscriber
		defer func() { _ = closeTranscriber() }()
	}

	speaker := voice.NewSpeaker(
		voice.NewSynthesizer(cfg.TTS.BaseURL, cfg.TTS.Slow),
		voice.NewExecLauncher(cfg.Playback.Player.Argv),
		voice.SpeakerOptions{
			PollInterval: time.Duration(cfg.Playback.PollIntervalMS) * time.Millisecond,
			Grace:        time.Duration(cfg.Playback.GraceMS) * time.Millisecond,
		},
		logger,
	)

	controller := session.NewController(
		logger,
		registry,
		mic,
		transcriber,
		responder,
		speaker,
		cue.NewPlayer(cfg.Cue.Enable, logger),
		newConsolePrompter(r.Stdin),
		r.Stdout,
	)

	socketPath, err := ipc.RuntimeSocketPath()
	if err != nil {
		// No runtime dir means no control socket; the session still runs.
		logger.Warn("control socket unavailable", "error", err.Error())
		if runErr := controller.Run(ctx); runErr != nil {
			fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
			return 1
		}
		return 0
	}

	listener, err := ipc.Acquire(ctx, socketPath, 180*time.Millisecond, 8)
	if err != nil {
		if errors.Is(err, ipc.ErrAlreadyRunning) {
			fmt.Fprintln(r.Stderr, "error: another parley session is already running")
			return 1
		}
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	defer func() {
		_ = listener.Close()
		_ = os.Remove(socketPath)
	}()

	serverCtx, serverCancel := context.WithCancel(ctx)
	defer serverCancel()

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- ipc.Serve(serverCtx, listener, controller)
	}()

	runErr := controller.Run(ctx)
	serverCancel()
	if serverErr := <-serverErrCh; serverErr != nil {
		logger.Error("control server failed", "error", serverErr.Error())
	}

	if runErr != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", runErr)
		return 1
	}
	return 0
}

// unavailableTranscriber stands in when the speech client could not be
// dialed; every attempt reads as a service failure.
type unavailableTranscriber struct{}

func (unavailableTranscriber) Transcribe(context.Context, audio.Clip, string) recognize.Result {
	return recognize.Result{Kind: recognize.KindFailed, Reason: recognize.ReasonUnavailable}
}

func tryForward(ctx context.Context, socketPath string, command string) (ipc.Response, bool, error) {
	resp, err := ipc.Send(ctx, socketPath, ipc.Request{Command: command}, 220*time.Millisecond)
	if err == nil {
		if resp.OK {
			return resp, true, nil
		}
		return resp, true, errors.New(resp.Error)
	}

	if isSocketMissing(err) || isConnectionRefused(err) {
		return ipc.Response{}, false, nil
	}

	return ipc.Response{}, true, fmt.Errorf("forward command %q: %w", command, err)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
