// Package doctor runs readiness diagnostics for config, credentials, audio,
// and the speech-synthesis endpoint.
package doctor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/parley-cli/parley/internal/audio"
	"github.com/parley-cli/parley/internal/config"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes environment/config/runtime checks for a loaded config.
func Run(cfg config.Loaded) Report {
	checks := []Check{}

	checks = append(checks, Check{
		Name:    "config",
		Pass:    true,
		Message: fmt.Sprintf("loaded %q", cfg.Path),
	})

	checks = append(checks, checkCredential(cfg.Config.Gemini.APIKeyEnv))
	checks = append(checks, checkCommand(cfg.Config.Playback.Player.Argv, "player_cmd"))
	checks = append(checks, checkAudioSelection(cfg.Config))
	checks = append(checks, checkSynthesisEndpoint(cfg.Config))
	checks = append(checks, checkTempDir())

	return Report{Checks: checks}
}

// checkCredential reports whether the configured API key variable is set.
// Absence degrades the model adapter rather than failing startup, so this is
// the place the user actually finds out.
func checkCredential(envName string) Check {
	if strings.TrimSpace(os.Getenv(envName)) == "" {
		return Check{
			Name:    "gemini.credential",
			Pass:    false,
			Message: fmt.Sprintf("%s is not set; AI replies will be unavailable", envName),
		}
	}
	return Check{
		Name:    "gemini.credential",
		Pass:    true,
		Message: fmt.Sprintf("%s is set", envName),
	}
}

// checkCommand validates that argv contains a runnable command.
func checkCommand(argv []string, name string) Check {
	if len(argv) == 0 {
		return Check{Name: name, Pass: false, Message: "command is empty"}
	}
	return checkBinary(argv[0], fmt.Sprintf("%s command is available", name))
}

// checkBinary validates that a binary exists in PATH.
func checkBinary(bin string, okMsg string) Check {
	path, err := exec.LookPath(bin)
	if err != nil {
		return Check{Name: bin, Pass: false, Message: fmt.Sprintf("binary not found in PATH: %s", bin)}
	}
	return Check{Name: bin, Pass: true, Message: fmt.Sprintf("found at %s (%s)", path, okMsg)}
}

// checkAudioSelection runs live device selection to surface selection/fallback issues.
func checkAudioSelection(cfg config.Config) Check {
	selection, err := audio.SelectDevice(context.Background(), cfg.Audio.Input, cfg.Audio.Fallback)
	if err != nil {
		return Check{Name: "audio.device", Pass: false, Message: err.Error()}
	}
	message := fmt.Sprintf("selected %q", selection.Device.ID)
	if selection.Warning != "" {
		message = message + " (" + selection.Warning + ")"
	}
	return Check{Name: "audio.device", Pass: true, Message: message}
}

// checkSynthesisEndpoint probes the TTS endpoint. Any HTTP answer counts as
// reachable; only transport failure fails the check.
func checkSynthesisEndpoint(cfg config.Config) Check {
	base := strings.TrimSpace(cfg.TTS.BaseURL)
	if base == "" {
		return Check{Name: "tts.endpoint", Pass: false, Message: "tts base_url is empty"}
	}

	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Head(base)
	if err != nil {
		return Check{Name: "tts.endpoint", Pass: false, Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	return Check{
		Name:    "tts.endpoint",
		Pass:    true,
		Message: fmt.Sprintf("HTTP %d from %s", resp.StatusCode, base),
	}
}

// checkTempDir verifies the reply artifact location is writable.
func checkTempDir() Check {
	dir := os.TempDir()
	probe := filepath.Join(dir, ".parley-doctor-probe")
	if err := os.WriteFile(probe, []byte("probe"), 0o600); err != nil {
		return Check{Name: "tempdir", Pass: false, Message: fmt.Sprintf("cannot write to %s: %v", dir, err)}
	}
	_ = os.Remove(probe)
	return Check{Name: "tempdir", Pass: true, Message: fmt.Sprintf("%s is writable", dir)}
}
