// Package tokenize provides the segmentation policies applied to TMX
// segments before staging. A segment is either split on whitespace runs
// (the default for already-tokenized or plain text) or piped through an
// external tokenizer command.
package tokenize

import (
	"fmt"
	"os/exec"
	"strings"
)

// Func turns one text segment into its token sequence.
type Func func(segment string) ([]string, error)

// Whitespace splits a segment on runs of Unicode whitespace.
// Empty segments yield an empty token sequence.
func Whitespace(segment string) ([]string, error) {
	return strings.Fields(segment), nil
}

// Command returns a Func that pipes each segment through an external
// tokenizer program on stdin and reads one token per output line.
// Blank output lines are dropped.
func Command(path string, args ...string) Func {
	return func(segment string) ([]string, error) {
		cmd := exec.Command(path, args...)
		cmd.Stdin = strings.NewReader(segment)
		out, err := cmd.Output()
		if err != nil {
			return nil, fmt.Errorf("tokenizer %s: %w", path, err)
		}
		var tokens []string
		for _, line := range strings.Split(string(out), "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				tokens = append(tokens, line)
			}
		}
		return tokens, nil
	}
}
