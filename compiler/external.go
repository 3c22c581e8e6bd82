package compiler

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/gogpu/spvbuild"
)

// DefaultBin is the compiler executable used when none is configured.
const DefaultBin = "glslc"

// External compiles jobs by running a compiler executable.
type External struct {
	// Bin is the executable name or path.
	Bin string

	// Args are inserted between the executable and the input file.
	Args []string

	// SDKDir is searched as SDKDir/bin when Bin is a bare name missing
	// from PATH. Typically $VULKAN_SDK.
	SDKDir string

	// Stdout and Stderr receive the compiler's output. Nil discards it.
	Stdout io.Writer
	Stderr io.Writer
}

// NewExternal returns a driver for bin that forwards compiler output to the
// process's standard streams.
func NewExternal(bin string) *External {
	if bin == "" {
		bin = DefaultBin
	}
	return &External{
		Bin:    bin,
		SDKDir: os.Getenv("VULKAN_SDK"),
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Command returns bin, args, input, "-o", output.
func (e *External) Command(job spvbuild.Job) []string {
	cmd := make([]string, 0, len(e.Args)+4)
	cmd = append(cmd, e.Bin)
	cmd = append(cmd, e.Args...)
	return append(cmd, job.Input, "-o", job.Output)
}

// Compile runs the compiler and waits for it to exit. A nonzero exit status
// is returned as an *exec.ExitError.
func (e *External) Compile(ctx context.Context, job spvbuild.Job) error {
	path, err := e.Resolve()
	if err != nil {
		return err
	}
	args := e.Command(job)[1:]
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = e.Stdout
	cmd.Stderr = e.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

// Resolve returns the path of the executable that Compile runs.
func (e *External) Resolve() (string, error) {
	bin, err := homedir.Expand(e.Bin)
	if err != nil {
		return "", fmt.Errorf("expand compiler path: %w", err)
	}
	path, err := exec.LookPath(bin)
	if err == nil {
		return path, nil
	}
	if e.SDKDir != "" && !strings.ContainsRune(bin, filepath.Separator) {
		if sdkPath, sdkErr := exec.LookPath(filepath.Join(e.SDKDir, "bin", bin)); sdkErr == nil {
			return sdkPath, nil
		}
	}
	return "", fmt.Errorf("compiler %q: %w", e.Bin, err)
}
