package voice

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	replyFileName   = "parley-reply.mp3"
	cleanupAttempts = 3
	cleanupDelay    = 100 * time.Millisecond
)

// synthesizerAPI lets tests substitute the HTTP synthesizer.
type synthesizerAPI interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

// Speaker synthesizes reply text to a temp file and plays it through the
// configured player, blocking until playback ends.
type Speaker struct {
	synth        synthesizerAPI
	launcher     Launcher
	tempDir      string
	pollInterval time.Duration
	grace        time.Duration
	logger       *slog.Logger
}

// SpeakerOptions carries the playback timing knobs.
type SpeakerOptions struct {
	PollInterval time.Duration
	Grace        time.Duration
}

// NewSpeaker wires a synthesizer to a playback launcher.
func NewSpeaker(synth synthesizerAPI, launcher Launcher, opts SpeakerOptions, logger *slog.Logger) *Speaker {
	return &Speaker{
		synth:        synth,
		launcher:     launcher,
		tempDir:      os.TempDir(),
		pollInterval: opts.PollInterval,
		grace:        opts.Grace,
		logger:       logger,
	}
}

// Speak voices text in the given language. It returns once playback has
// finished and the temp file has been cleaned up. Empty text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text, lang string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	audio, err := s.synth.Synthesize(ctx, text, lang)
	if err != nil {
		return fmt.Errorf("synthesize reply: %w", err)
	}

	path := filepath.Join(s.tempDir, replyFileName)
	// A crash mid-playback can leave the previous reply behind.
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale reply file: %w", err)
	}
	if err := os.WriteFile(path, audio, 0o600); err != nil {
		return fmt.Errorf("write reply file: %w", err)
	}
	defer s.cleanup(path)

	playback, err := s.launcher.Play(path)
	if err != nil {
		return err
	}

	if err := s.waitForPlayback(ctx, playback); err != nil {
		return err
	}

	if s.grace > 0 {
		time.Sleep(s.grace)
	}
	return nil
}

func (s *Speaker) waitForPlayback(ctx context.Context, playback Playback) error {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for playback.Playing() {
		select {
		case <-ctx.Done():
			_ = playback.Stop()
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// cleanup removes the reply file, retrying while the player may still hold
// it open. A file that will not go away is logged and left for the next
// turn's stale-file removal.
func (s *Speaker) cleanup(path string) {
	for attempt := 0; attempt < cleanupAttempts; attempt++ {
		err := os.Remove(path)
		if err == nil || os.IsNotExist(err) {
			return
		}
		time.Sleep(cleanupDelay)
	}
	s.logger.Warn("could not remove reply file", slog.String("path", path))
}
