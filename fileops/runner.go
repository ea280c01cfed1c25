// Package fileops holds the file operations a packaging pipeline performs
// around the pool: hashing, signing, archive extraction, mirroring, and
// whole-file helpers.
//
// Extraction and mirroring delegate to external tools (unzip, tar, rsync)
// through a Runner so they can be replaced in tests.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Runner runs an external tool to completion.
type Runner interface {
	Run(tool string, args ...string) error
}

// ToolError reports a failed external tool. Exit codes are not distinguished.
type ToolError struct {
	Tool string
	Err  error
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s command failed", e.Tool)
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExecRunner runs tools as child processes sharing the caller's stdio.
// There is no timeout: a hung tool blocks the caller.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(tool string, args ...string) error {
	cmd := exec.Command(tool, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &ToolError{Tool: tool, Err: err}
	}
	return nil
}

// IsToolError reports whether err comes from a failed external tool.
func IsToolError(err error) bool {
	var te *ToolError
	return errors.As(err, &te)
}

func runnerOrDefault(r Runner) Runner {
	if r == nil {
		return ExecRunner{}
	}
	return r
}
