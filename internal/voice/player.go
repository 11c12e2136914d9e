package voice

import (
	"fmt"
	"os/exec"
	"sync/atomic"
)

// Playback is one in-flight player process.
type Playback interface {
	Playing() bool
	Stop() error
}

// Launcher starts playback of an audio file.
type Launcher interface {
	Play(path string) (Playback, error)
}

// ExecLauncher plays audio files through an external player command such as
// mpg123.
type ExecLauncher struct {
	argv []string
}

// NewExecLauncher wraps a parsed player command line.
func NewExecLauncher(argv []string) *ExecLauncher {
	return &ExecLauncher{argv: argv}
}

// Play starts the player with the file path appended to the configured
// arguments.
func (l *ExecLauncher) Play(path string) (Playback, error) {
	if len(l.argv) == 0 {
		return nil, fmt.Errorf("no player command configured")
	}

	args := append(append([]string{}, l.argv[1:]...), path)
	cmd := exec.Command(l.argv[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start player %q: %w", l.argv[0], err)
	}

	pb := &execPlayback{cmd: cmd}
	go func() {
		_ = cmd.Wait()
		pb.done.Store(true)
	}()
	return pb, nil
}

type execPlayback struct {
	cmd  *exec.Cmd
	done atomic.Bool
}

func (p *execPlayback) Playing() bool {
	return !p.done.Load()
}

func (p *execPlayback) Stop() error {
	if p.done.Load() {
		return nil
	}
	return p.cmd.Process.Kill()
}
