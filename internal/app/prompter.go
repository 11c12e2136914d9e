package app

import (
	"bufio"
	"context"
	"io"
)

type lineResult struct {
	text string
	err  error
}

// consolePrompter pumps stdin lines through a channel so reads can be
// abandoned when the session context is cancelled.
type consolePrompter struct {
	lines chan lineResult
}

func newConsolePrompter(rd io.Reader) *consolePrompter {
	p := &consolePrompter{lines: make(chan lineResult)}
	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(rd)
		for scanner.Scan() {
			p.lines <- lineResult{text: scanner.Text()}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		p.lines <- lineResult{err: err}
	}()
	return p
}

func (p *consolePrompter) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}
