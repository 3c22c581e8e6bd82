package spvbuild

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// JobError reports a failed compilation.
type JobError struct {
	Job Job
	Err error
}

// Error implements the error interface.
func (e *JobError) Error() string {
	return fmt.Sprintf("%s: %v", e.Job.Input, e.Err)
}

// Unwrap returns the underlying error.
func (e *JobError) Unwrap() error {
	return e.Err
}

// ExitCode returns the compiler's exit code, or -1 if the compiler did not
// run to completion.
func (e *JobError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Failures collects the failed jobs of a build in the order they ran.
type Failures []*JobError

// Error implements the error interface.
func (f Failures) Error() string {
	if len(f) == 0 {
		return "no failures"
	}
	if len(f) == 1 {
		return f[0].Error()
	}
	return fmt.Sprintf("%s (and %d more failures)", f[0].Error(), len(f)-1)
}

// Summary returns one line per failure, preceded by a count.
func (f Failures) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d shader(s) failed to compile:", len(f))
	for _, e := range f {
		sb.WriteString("\n  ")
		sb.WriteString(e.Error())
	}
	return sb.String()
}

// Add appends a failure for job.
func (f *Failures) Add(job Job, err error) {
	*f = append(*f, &JobError{Job: job, Err: err})
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (f Failures) Unwrap() []error {
	errs := make([]error, len(f))
	for i, e := range f {
		errs[i] = e
	}
	return errs
}
