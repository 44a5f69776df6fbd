package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"
)

// CommandRunner executes an external program and captures its output.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// CommandError is returned when an external program exits unsuccessfully.
type CommandError struct {
	Op     string
	Name   string
	Err    error
	Stderr string
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s: %s failed: %v (stderr: %s)", e.Op, e.Name, e.Err, e.Stderr)
	}
	return fmt.Sprintf("%s: %s failed: %v", e.Op, e.Name, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

type ExecRunner struct {
	logger *logrus.Logger
}

func NewExecRunner(logger *logrus.Logger) *ExecRunner {
	return &ExecRunner{logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	const op = "ExecRunner.Run"

	r.logger.WithFields(logrus.Fields{
		"operation": op,
		"command":   name,
		"args":      strings.Join(args, " "),
	}).Debug("Executing command")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		r.logger.WithFields(logrus.Fields{
			"operation": op,
			"command":   name,
			"stderr":    stderr.String(),
		}).WithError(err).Error("Command execution failed")
		return stdout.Bytes(), stderr.Bytes(), &CommandError{
			Op:     op,
			Name:   name,
			Err:    err,
			Stderr: strings.TrimSpace(stderr.String()),
		}
	}

	return stdout.Bytes(), stderr.Bytes(), nil
}
