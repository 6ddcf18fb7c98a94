package main

import (
	"strings"

	"github.com/chzyer/readline"
)

// newLineReader builds the interactive reader behind the `db > ` prompt.
func newLineReader() (*readline.Instance, error) {
	return readline.New("db > ")
}

// readInput returns the next line with the terminator stripped. Any error
// (EOF included) is unrecoverable for the caller.
func readInput(rl *readline.Instance) (string, error) {
	line, err := rl.Readline()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
