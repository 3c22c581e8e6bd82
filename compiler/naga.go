package compiler

import (
	"context"
	"fmt"
	"os"

	"github.com/gogpu/naga"

	"github.com/gogpu/spvbuild"
)

// NagaName is the driver name rules use to select Naga.
const NagaName = "naga"

// Naga compiles WGSL sources to SPIR-V in process.
type Naga struct {
	Options naga.CompileOptions
}

// NewNaga returns a Naga driver with naga's default options.
func NewNaga() *Naga {
	return &Naga{Options: naga.DefaultOptions()}
}

// Command returns the equivalent nagac command line, used for echo only.
func (n *Naga) Command(job spvbuild.Job) []string {
	cmd := []string{NagaName}
	if n.Options.Debug {
		cmd = append(cmd, "-debug")
	}
	return append(cmd, job.Input, "-o", job.Output)
}

// Compile reads job.Input, compiles it and writes job.Output.
func (n *Naga) Compile(ctx context.Context, job spvbuild.Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	source, err := os.ReadFile(job.Input)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	spirv, err := naga.CompileWithOptions(string(source), n.Options)
	if err != nil {
		return fmt.Errorf("naga: %w", err)
	}
	if err := os.WriteFile(job.Output, spirv, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
