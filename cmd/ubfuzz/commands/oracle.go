package commands

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"ubfuzz/internal/printer"
	"ubfuzz/internal/program"
)

// oracle shells out to an external compiler/interpreter command to decide
// whether a candidate program is "interesting" (spec.md §1, §6.1): the
// core never links against or sandboxes the thing under test, it only
// prints the candidate to a temp file and runs the configured command
// against it. No retry logic and no sandboxing, by design — the spec
// explicitly puts both out of scope for the core.
type oracle struct {
	cmd     string
	args    []string
	timeout time.Duration
}

// newOracle parses a shell-word-split oracle spec (e.g. "clang -fsyntax-only -xc++")
// into a command and its fixed leading arguments; the candidate's temp file
// path is appended as the final argument on each run.
func newOracle(spec string, timeout time.Duration) (*oracle, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, fmt.Errorf("commands: empty -oracle command")
	}
	return &oracle{cmd: fields[0], args: fields[1:], timeout: timeout}, nil
}

// run prints p to a temp file and invokes the oracle command against it.
// A non-zero exit (or a timeout) is treated as "interesting" — the
// candidate triggered whatever misbehavior the oracle command is checking
// for, matching spec.md §6.1's feedback-callback contract.
func (o *oracle) run(p *program.Program) (bool, error) {
	f, err := os.CreateTemp("", "ubfuzz-*.cpp")
	if err != nil {
		return false, err
	}
	path := f.Name()
	defer os.Remove(path)

	if err := printer.Print(p, f); err != nil {
		f.Close()
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, err
	}

	ctx := context.Background()
	var cancel context.CancelFunc
	if o.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	args := append(append([]string{}, o.args...), path)
	cmd := exec.CommandContext(ctx, o.cmd, args...)
	return cmd.Run() != nil, nil
}
