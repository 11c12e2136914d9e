package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/parley-cli/parley/internal/language"
)

// Parse reads configuration content as JSONC layered on top of base.
// Empty content yields the base after validation.
func Parse(content string, base Config) (Config, []Warning, error) {
	if strings.TrimSpace(content) == "" {
		warnings, err := Validate(base)
		if err != nil {
			return Config{}, nil, err
		}
		return base, warnings, nil
	}

	normalized, err := normalizeJSONC(content)
	if err != nil {
		return Config{}, nil, err
	}

	decoder := json.NewDecoder(strings.NewReader(normalized))
	decoder.DisallowUnknownFields()

	var payload jsoncConfig
	if err := decoder.Decode(&payload); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}
	if err := ensureSingleJSONValue(decoder); err != nil {
		return Config{}, nil, wrapJSONDecodeError(normalized, err)
	}

	cfg := base
	if err := payload.applyTo(&cfg); err != nil {
		return Config{}, nil, err
	}

	warnings, err := Validate(cfg)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, warnings, nil
}

type jsoncConfig struct {
	Gemini   *jsoncGemini    `json:"gemini"`
	Audio    *jsoncAudio     `json:"audio"`
	Listen   *jsoncListen    `json:"listen"`
	TTS      *jsoncTTS       `json:"tts"`
	Playback *jsoncPlayback  `json:"playback"`
	Cue      *jsoncCue       `json:"cue"`
	Langs    []jsoncLanguage `json:"languages"`
}

type jsoncGemini struct {
	Model     *string `json:"model"`
	BaseURL   *string `json:"base_url"`
	APIKeyEnv *string `json:"api_key_env"`
}

type jsoncAudio struct {
	Input    *string `json:"input"`
	Fallback *string `json:"fallback"`
}

type jsoncListen struct {
	MaxWaitSeconds   *int `json:"max_wait_seconds"`
	MaxPhraseSeconds *int `json:"max_phrase_seconds"`
	CalibrateSeconds *int `json:"calibrate_seconds"`
}

type jsoncTTS struct {
	BaseURL *string `json:"base_url"`
	Slow    *bool   `json:"slow"`
}

type jsoncPlayback struct {
	PlayerCmd      *string `json:"player_cmd"`
	PollIntervalMS *int    `json:"poll_interval_ms"`
	GraceMS        *int    `json:"grace_ms"`
}

type jsoncCue struct {
	Enable *bool `json:"enable"`
}

type jsoncLanguage struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Recognition string `json:"recognition"`
	Synthesis   string `json:"synthesis"`
}

func (payload jsoncConfig) applyTo(cfg *Config) error {
	if payload.Gemini != nil {
		if payload.Gemini.Model != nil {
			cfg.Gemini.Model = strings.TrimSpace(*payload.Gemini.Model)
		}
		if payload.Gemini.BaseURL != nil {
			cfg.Gemini.BaseURL = strings.TrimSpace(*payload.Gemini.BaseURL)
		}
		if payload.Gemini.APIKeyEnv != nil {
			cfg.Gemini.APIKeyEnv = strings.TrimSpace(*payload.Gemini.APIKeyEnv)
		}
	}

	if payload.Audio != nil {
		if payload.Audio.Input != nil {
			cfg.Audio.Input = *payload.Audio.Input
		}
		if payload.Audio.Fallback != nil {
			cfg.Audio.Fallback = *payload.Audio.Fallback
		}
	}

	if payload.Listen != nil {
		if payload.Listen.MaxWaitSeconds != nil {
			cfg.Listen.MaxWaitSeconds = *payload.Listen.MaxWaitSeconds
		}
		if payload.Listen.MaxPhraseSeconds != nil {
			cfg.Listen.MaxPhraseSeconds = *payload.Listen.MaxPhraseSeconds
		}
		if payload.Listen.CalibrateSeconds != nil {
			cfg.Listen.CalibrateSeconds = *payload.Listen.CalibrateSeconds
		}
	}

	if payload.TTS != nil {
		if payload.TTS.BaseURL != nil {
			cfg.TTS.BaseURL = strings.TrimSpace(*payload.TTS.BaseURL)
		}
		if payload.TTS.Slow != nil {
			cfg.TTS.Slow = *payload.TTS.Slow
		}
	}

	if payload.Playback != nil {
		if payload.Playback.PlayerCmd != nil {
			raw := *payload.Playback.PlayerCmd
			argv, err := parseArgv(raw)
			if err != nil {
				return fmt.Errorf("invalid playback.player_cmd: %w", err)
			}
			cfg.Playback.Player = CommandConfig{Raw: raw, Argv: argv}
		}
		if payload.Playback.PollIntervalMS != nil {
			cfg.Playback.PollIntervalMS = *payload.Playback.PollIntervalMS
		}
		if payload.Playback.GraceMS != nil {
			cfg.Playback.GraceMS = *payload.Playback.GraceMS
		}
	}

	if payload.Cue != nil && payload.Cue.Enable != nil {
		cfg.Cue.Enable = *payload.Cue.Enable
	}

	if payload.Langs != nil {
		profiles := make([]language.Profile, 0, len(payload.Langs))
		for _, l := range payload.Langs {
			profiles = append(profiles, language.Profile{
				Key:               l.Key,
				DisplayName:       l.Name,
				RecognitionLocale: l.Recognition,
				SynthesisLocale:   l.Synthesis,
			})
		}
		cfg.Languages = profiles
	}

	return nil
}

func ensureSingleJSONValue(decoder *json.Decoder) error {
	var extra struct{}
	err := decoder.Decode(&extra)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err == nil {
		return fmt.Errorf("multiple JSON values are not allowed")
	}
	return err
}

func wrapJSONDecodeError(content string, err error) error {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, col := offsetToLineCol(content, syntaxErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		line, col := offsetToLineCol(content, typeErr.Offset)
		return fmt.Errorf("line %d column %d: %w", line, col, err)
	}

	return err
}

func offsetToLineCol(content string, offset int64) (int, int) {
	line, col := 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
