// Package cue plays short earcons marking listening state changes.
package cue

import (
	"log/slog"
	"sync"
)

// Kind identifies one earcon.
type Kind int

const (
	// KindListenStart marks the microphone opening.
	KindListenStart Kind = iota + 1
	// KindListenStop marks the end of a capture.
	KindListenStop
	// KindError marks a failed turn.
	KindError
)

// Player emits earcons through the Pulse server. Playback is asynchronous
// and serialized so overlapping cues never stack.
type Player struct {
	enable bool
	logger *slog.Logger

	mu sync.Mutex
}

// NewPlayer builds a cue player. When enable is false every cue is a no-op.
func NewPlayer(enable bool, logger *slog.Logger) *Player {
	return &Player{enable: enable, logger: logger}
}

// ListenStart plays the microphone-open cue.
func (p *Player) ListenStart() { p.play(KindListenStart) }

// ListenStop plays the capture-finished cue.
func (p *Player) ListenStop() { p.play(KindListenStop) }

// Error plays the failed-turn buzz.
func (p *Player) Error() { p.play(KindError) }

func (p *Player) play(kind Kind) {
	if p == nil || !p.enable {
		return
	}
	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if err := emit(kind); err != nil {
			p.logger.Debug("cue playback failed", slog.String("error", err.Error()))
		}
	}()
}
