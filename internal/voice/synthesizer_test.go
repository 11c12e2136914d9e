package voice

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSynthesizeRequestsExpectedQuery(t *testing.T) {
	var gotQuery map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte("mp3 bytes"))
	}))
	defer server.Close()

	synth := NewSynthesizer(server.URL, false)
	audio, err := synth.Synthesize(context.Background(), "namaste duniya", "hi")

	require.NoError(t, err)
	require.Equal(t, []byte("mp3 bytes"), audio)
	require.Equal(t, []string{"UTF-8"}, gotQuery["ie"])
	require.Equal(t, []string{"tw-ob"}, gotQuery["client"])
	require.Equal(t, []string{"hi"}, gotQuery["tl"])
	require.Equal(t, []string{"namaste duniya"}, gotQuery["q"])
	require.NotContains(t, gotQuery, "ttsspeed")
}

func TestSynthesizeSlowAddsSpeedParameter(t *testing.T) {
	var gotSpeed string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSpeed = r.URL.Query().Get("ttsspeed")
		w.Write([]byte("mp3 bytes"))
	}))
	defer server.Close()

	synth := NewSynthesizer(server.URL, true)
	_, err := synth.Synthesize(context.Background(), "hello", "en")

	require.NoError(t, err)
	require.Equal(t, "0.24", gotSpeed)
}

func TestSynthesizeUnsupportedLanguage(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		synth := NewSynthesizer(server.URL, false)
		_, err := synth.Synthesize(context.Background(), "hello", "xx")
		server.Close()

		var unsupported *UnsupportedLanguageError
		require.ErrorAs(t, err, &unsupported)
		require.Equal(t, "xx", unsupported.Lang)
	}
}

func TestSynthesizeServerErrorIsPlainError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	synth := NewSynthesizer(server.URL, false)
	_, err := synth.Synthesize(context.Background(), "hello", "en")

	require.Error(t, err)
	var unsupported *UnsupportedLanguageError
	require.False(t, errors.As(err, &unsupported))
}

func TestSynthesizeEmptyBodyIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	synth := NewSynthesizer(server.URL, false)
	_, err := synth.Synthesize(context.Background(), "hello", "en")
	require.Error(t, err)
}
