// Package ipc provides the unix-socket control channel between a running
// parley session and companion CLI invocations.
package ipc

// Commands accepted by a running session.
const (
	CommandStatus = "status"
	CommandQuit   = "quit"
)

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	OK       bool   `json:"ok"`
	State    string `json:"state,omitempty"`
	Language string `json:"language,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
