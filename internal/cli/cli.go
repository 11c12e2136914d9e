// Package cli parses the parley command line.
package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandChat    Command = "chat"
	CommandDevices Command = "devices"
	CommandStatus  Command = "status"
	CommandQuit    Command = "quit"
	CommandDoctor  Command = "doctor"
	CommandVersion Command = "version"
	CommandHelp    Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandChat:    {},
	CommandDevices: {},
	CommandStatus:  {},
	CommandQuit:    {},
	CommandDoctor:  {},
	CommandVersion: {},
	CommandHelp:    {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	ShowHelp   bool
}

// Parse interprets CLI arguments. With no command, chat is the default.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandChat}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  chat      Run the interactive voice chat session (default)
  devices   List available input devices
  status    Print the state of a running chat session
  quit      Ask a running chat session to exit
  doctor    Run configuration and environment checks
  version   Print version information
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/parley/config.conf)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
