// Package voice turns reply text into audible speech.
package voice

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const synthTimeout = 30 * time.Second

// UnsupportedLanguageError reports that the synthesis service rejected the
// requested language code.
type UnsupportedLanguageError struct {
	Lang string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("speech synthesis does not support language %q", e.Lang)
}

// Synthesizer fetches spoken MP3 audio from the translate TTS endpoint.
type Synthesizer struct {
	baseURL    string
	slow       bool
	httpClient *http.Client
}

// NewSynthesizer builds a synthesizer against the given endpoint.
func NewSynthesizer(baseURL string, slow bool) *Synthesizer {
	return &Synthesizer{
		baseURL:    baseURL,
		slow:       slow,
		httpClient: &http.Client{Timeout: synthTimeout},
	}
}

// Synthesize fetches MP3 audio speaking text in the given language code.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", lang)
	query.Set("q", text)
	if s.slow {
		query.Set("ttsspeed", "0.24")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build synthesis request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch synthesized speech: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusNotFound:
		// The endpoint answers 400/404 for language codes it cannot speak.
		return nil, &UnsupportedLanguageError{Lang: lang}
	default:
		return nil, fmt.Errorf("speech synthesis returned status %d", resp.StatusCode)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read synthesized speech: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("speech synthesis returned no audio")
	}
	return audio, nil
}
