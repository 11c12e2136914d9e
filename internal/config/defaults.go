package config

// Default returns the canonical runtime configuration used when no file is present.
func Default() Config {
	player := "mpg123 -q"

	return Config{
		Gemini: GeminiConfig{
			Model:     "gemini-1.5-flash-latest",
			BaseURL:   "https://generativelanguage.googleapis.com/v1beta",
			APIKeyEnv: "GEMINI_API_KEY",
		},
		Audio: AudioConfig{
			Input:    "default",
			Fallback: "default",
		},
		Listen: ListenConfig{
			MaxWaitSeconds:   7,
			MaxPhraseSeconds: 20,
			CalibrateSeconds: 1,
		},
		TTS: TTSConfig{
			BaseURL: "https://translate.google.com/translate_tts",
		},
		Playback: PlaybackConfig{
			Player:         CommandConfig{Raw: player, Argv: mustParseArgv(player)},
			PollIntervalMS: 100,
			GraceMS:        500,
		},
		Cue:       CueConfig{Enable: true},
		Languages: nil,
	}
}
