package doctor

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parley-cli/parley/internal/config"
)

func TestReportOKAndString(t *testing.T) {
	report := Report{Checks: []Check{
		{Name: "one", Pass: true, Message: "good"},
		{Name: "two", Pass: false, Message: "bad"},
	}}

	require.False(t, report.OK())
	text := report.String()
	require.Contains(t, text, "[OK] one: good")
	require.Contains(t, text, "[FAIL] two: bad")
}

func TestReportOKAllPassing(t *testing.T) {
	report := Report{Checks: []Check{{Name: "one", Pass: true}, {Name: "two", Pass: true}}}
	require.True(t, report.OK())
}

func TestCheckCredential(t *testing.T) {
	t.Setenv("TEST_DOCTOR_KEY", "")
	check := checkCredential("TEST_DOCTOR_KEY")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "TEST_DOCTOR_KEY is not set")

	t.Setenv("TEST_DOCTOR_KEY", "secret")
	check = checkCredential("TEST_DOCTOR_KEY")
	require.True(t, check.Pass)
}

func TestCheckCommandEmpty(t *testing.T) {
	check := checkCommand(nil, "player_cmd")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "command is empty")
}

func TestCheckBinaryFound(t *testing.T) {
	check := checkBinary("sh", "shell available")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "shell available")
}

func TestCheckBinaryMissing(t *testing.T) {
	check := checkBinary("definitely-not-a-real-binary", "unused")
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "binary not found")
}

func TestCheckCommandUsesBinaryFromPath(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "fake-player")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/usr/bin/env sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", dir+":"+os.Getenv("PATH"))

	check := checkCommand([]string{"fake-player", "-q"}, "player_cmd")
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "player_cmd command is available")
}

func TestCheckSynthesisEndpointReachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	t.Cleanup(server.Close)

	cfg := config.Default()
	cfg.TTS.BaseURL = server.URL

	check := checkSynthesisEndpoint(cfg)
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "HTTP 405")
}

func TestCheckSynthesisEndpointUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	cfg := config.Default()
	cfg.TTS.BaseURL = server.URL

	check := checkSynthesisEndpoint(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "request failed")
}

func TestCheckSynthesisEndpointEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.TTS.BaseURL = ""

	check := checkSynthesisEndpoint(cfg)
	require.False(t, check.Pass)
	require.Contains(t, check.Message, "base_url is empty")
}

func TestCheckAudioSelectionFailureWithInvalidPulseServer(t *testing.T) {
	t.Setenv("PULSE_SERVER", "unix:/tmp/definitely-missing-pulse-server")

	check := checkAudioSelection(config.Default())
	require.False(t, check.Pass)
	require.Equal(t, "audio.device", check.Name)
}

func TestCheckTempDirWritable(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())

	check := checkTempDir()
	require.True(t, check.Pass)
	require.Contains(t, check.Message, "writable")
}
