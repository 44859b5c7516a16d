package transport

import (
	"io"
	"os/exec"

	"github.com/arthur-debert/switchtower/pkg/errors"
)

// LocalRunner runs commands on this machine with "sh -c".
type LocalRunner struct {
	Shell string
}

// NewLocalRunner returns a LocalRunner using /bin/sh.
func NewLocalRunner() *LocalRunner {
	return &LocalRunner{Shell: "sh"}
}

func (r *LocalRunner) Run(command string, stdout, stderr io.Writer) error {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	cmd := exec.Command(shell, "-c", command)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		stErr := errors.Wrapf(err, errors.ErrTransport, "command failed on %s", LocalHost)
		if exitErr, ok := err.(*exec.ExitError); ok {
			stErr.WithDetail("exit_status", exitErr.ExitCode())
		}
		return stErr
	}
	return nil
}

func (r *LocalRunner) Close() error {
	return nil
}
