package config

import (
	"fmt"
	"strings"

	"github.com/parley-cli/parley/internal/language"
)

// Validate enforces config invariants and returns non-fatal warnings.
func Validate(cfg Config) ([]Warning, error) {
	warnings := make([]Warning, 0)

	if strings.TrimSpace(cfg.Gemini.Model) == "" {
		return nil, fmt.Errorf("gemini.model must not be empty")
	}
	if strings.TrimSpace(cfg.Gemini.BaseURL) == "" {
		return nil, fmt.Errorf("gemini.base_url must not be empty")
	}
	if !hasHTTPScheme(cfg.Gemini.BaseURL) {
		return nil, fmt.Errorf("gemini.base_url must start with http:// or https://")
	}
	if strings.TrimSpace(cfg.Gemini.APIKeyEnv) == "" {
		return nil, fmt.Errorf("gemini.api_key_env must not be empty")
	}

	if cfg.Listen.MaxWaitSeconds <= 0 {
		return nil, fmt.Errorf("listen.max_wait_seconds must be > 0")
	}
	if cfg.Listen.MaxPhraseSeconds <= 0 {
		return nil, fmt.Errorf("listen.max_phrase_seconds must be > 0")
	}
	if cfg.Listen.CalibrateSeconds <= 0 {
		return nil, fmt.Errorf("listen.calibrate_seconds must be > 0")
	}

	if strings.TrimSpace(cfg.TTS.BaseURL) == "" {
		return nil, fmt.Errorf("tts.base_url must not be empty")
	}
	if !hasHTTPScheme(cfg.TTS.BaseURL) {
		return nil, fmt.Errorf("tts.base_url must start with http:// or https://")
	}

	if len(cfg.Playback.Player.Argv) == 0 {
		return nil, fmt.Errorf("playback.player_cmd must not be empty")
	}
	if cfg.Playback.PollIntervalMS <= 0 {
		return nil, fmt.Errorf("playback.poll_interval_ms must be > 0")
	}
	if cfg.Playback.GraceMS < 0 {
		return nil, fmt.Errorf("playback.grace_ms must be >= 0")
	}

	if len(cfg.Languages) > 0 {
		if _, err := language.New(cfg.Languages); err != nil {
			return nil, fmt.Errorf("languages: %w", err)
		}
	}

	return warnings, nil
}

// BuildRegistry resolves the effective language registry for a config.
func BuildRegistry(cfg Config) (language.Registry, error) {
	if len(cfg.Languages) == 0 {
		return language.Builtin(), nil
	}
	return language.New(cfg.Languages)
}

func hasHTTPScheme(url string) bool {
	trimmed := strings.TrimSpace(url)
	return strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://")
}
