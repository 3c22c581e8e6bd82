package spvbuild

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFailures(t *testing.T) {
	var f Failures
	assert.Equal(t, "no failures", f.Error())

	f.Add(Job{Input: "a.vert"}, errors.New("exit status 1"))
	assert.Equal(t, "a.vert: exit status 1", f.Error())

	f.Add(Job{Input: "b.frag"}, fs.ErrPermission)
	assert.Equal(t, "a.vert: exit status 1 (and 1 more failures)", f.Error())
	assert.Equal(t,
		"2 shader(s) failed to compile:\n  a.vert: exit status 1\n  b.frag: permission denied",
		f.Summary())

	var err error = f
	assert.ErrorIs(t, err, fs.ErrPermission)

	var jobErr *JobError
	assert.True(t, errors.As(err, &jobErr))
	assert.Equal(t, "a.vert", jobErr.Job.Input)
	assert.Equal(t, -1, jobErr.ExitCode())
}
