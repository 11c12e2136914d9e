// Package config resolves, parses, validates, and defaults parley configuration.
package config

import "github.com/parley-cli/parley/internal/language"

// Config is the fully materialized runtime configuration used by parley.
type Config struct {
	Gemini    GeminiConfig
	Audio     AudioConfig
	Listen    ListenConfig
	TTS       TTSConfig
	Playback  PlaybackConfig
	Cue       CueConfig
	Languages []language.Profile
}

// GeminiConfig controls the generative-AI endpoint and credential source.
type GeminiConfig struct {
	Model     string
	BaseURL   string
	APIKeyEnv string
}

// AudioConfig controls preferred and fallback input-source selection.
type AudioConfig struct {
	Input    string
	Fallback string
}

// ListenConfig bounds one microphone listening attempt.
type ListenConfig struct {
	MaxWaitSeconds   int
	MaxPhraseSeconds int
	CalibrateSeconds int
}

// TTSConfig controls the speech-synthesis endpoint.
type TTSConfig struct {
	BaseURL string
	Slow    bool
}

// PlaybackConfig controls how synthesized replies are played back.
type PlaybackConfig struct {
	Player         CommandConfig
	PollIntervalMS int
	GraceMS        int
}

// CueConfig controls audible listen start/stop earcons.
type CueConfig struct {
	Enable bool
}

// CommandConfig stores a raw command string and its parsed argv form.
type CommandConfig struct {
	Raw  string
	Argv []string
}

// Warning is a non-fatal parse/validation message.
type Warning struct {
	Line    int
	Message string
}
