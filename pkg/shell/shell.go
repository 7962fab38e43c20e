// Package shell executes shell-interpreted command lines to completion,
// streaming their combined output to a logger line by line.
package shell

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"kroekerlabs.dev/chyme/postscript/pkg/lineio"
)

type Runner struct {
	logger log.Logger
}

func NewRunner(logger log.Logger) *Runner {
	return &Runner{logger}
}

// Run joins cmd and args with a single space and executes the result as a
// shell command line, blocking until it exits. Stdout and stderr are combined
// and emitted through the logger as each line arrives. A whitespace-only
// command line is a silent no-op. A non-zero exit status is returned as an
// error naming the full command line.
func (r *Runner) Run(ctx context.Context, cmd string, args string, cwd string) error {
	fullCommand := strings.TrimSpace(cmd + " " + args)
	if fullCommand == "" {
		return nil
	}

	level.Debug(r.logger).Log("msg", "executing command", "cmd", fullCommand)

	prog, err := syntax.NewParser().Parse(strings.NewReader(fullCommand), "")
	if err != nil {
		return fmt.Errorf("failed to parse command '%s': %s", fullCommand, err.Error())
	}

	out := lineio.NewWriter(func(line string) {
		level.Debug(r.logger).Log("output", line)
	})

	opts := []interp.RunnerOption{
		interp.StdIO(nil, out, out),
	}
	if cwd != "" {
		opts = append(opts, interp.Dir(cwd))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return err
	}

	runErr := runner.Run(ctx, prog)
	out.Flush()
	if runErr != nil {
		if status, ok := interp.IsExitStatus(runErr); ok {
			return fmt.Errorf("failed to execute command: '%s' (exit status %d)", fullCommand, status)
		}
		return fmt.Errorf("failed to execute command: '%s': %s", fullCommand, runErr.Error())
	}

	return nil
}
