package spvbuild

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gogpu/spvbuild/spvcheck"
)

// Driver turns one job into a compiled artifact.
type Driver interface {
	// Command returns the command line that Compile runs for job.
	Command(job Job) []string

	// Compile produces job.Output from job.Input and blocks until done.
	Compile(ctx context.Context, job Job) error
}

// Printer echoes command lines before they run.
type Printer interface {
	PrintCommand(args []string)
}

// Report summarizes a build.
type Report struct {
	Planned  int      // jobs found by Plan
	Compiled int      // jobs that completed successfully
	Failures Failures // jobs that failed, in run order
}

// Builder runs planned jobs one at a time.
type Builder struct {
	Options Options

	// Driver compiles jobs whose rule names no driver.
	Driver Driver

	// Drivers holds the named drivers that rules may select.
	Drivers map[string]Driver

	// Printer echoes every command before it runs. Nil disables echo.
	Printer Printer

	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger
}

// NewBuilder returns a builder that compiles with driver.
func NewBuilder(opts Options, driver Driver) *Builder {
	return &Builder{
		Options: opts,
		Driver:  driver,
		Drivers: make(map[string]Driver),
	}
}

func (b *Builder) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default()
}

// Build plans the jobs for b.Options and runs them.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	jobs, err := Plan(b.Options)
	if err != nil {
		return Report{}, err
	}
	b.logger().Debug("planned build", "dir", b.Options.Dir, "jobs", len(jobs))
	return b.Run(ctx, jobs)
}

// Run compiles jobs sequentially. Failed jobs are collected and returned as
// a Failures error after every job has been attempted, or after the first
// failure when FailFast is set. Cancelling ctx stops the build between jobs
// and kills the running compiler.
func (b *Builder) Run(ctx context.Context, jobs []Job) (Report, error) {
	report := Report{Planned: len(jobs)}
	if err := b.prepareOutputDirs(jobs); err != nil {
		return report, err
	}

	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("build interrupted: %w", err)
		}
		if err := b.runJob(ctx, job); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return report, fmt.Errorf("build interrupted: %w", ctxErr)
			}
			b.logger().Debug("compile failed", "input", job.Input, "err", err)
			report.Failures.Add(job, err)
			if b.Options.FailFast {
				break
			}
			continue
		}
		report.Compiled++
	}

	if len(report.Failures) > 0 {
		return report, report.Failures
	}
	return report, nil
}

func (b *Builder) runJob(ctx context.Context, job Job) error {
	driver, err := b.driverFor(job.Shader.Rule)
	if err != nil {
		return err
	}
	if b.Printer != nil {
		b.Printer.PrintCommand(driver.Command(job))
	}
	if b.Options.DryRun {
		return nil
	}
	if err := driver.Compile(ctx, job); err != nil {
		return err
	}
	if b.Options.Verify {
		if err := spvcheck.VerifyFile(job.Output); err != nil {
			return fmt.Errorf("verify output: %w", err)
		}
	}
	return nil
}

func (b *Builder) driverFor(rule Rule) (Driver, error) {
	if rule.Driver == "" {
		if b.Driver == nil {
			return nil, errors.New("no compiler driver configured")
		}
		return b.Driver, nil
	}
	d, ok := b.Drivers[rule.Driver]
	if !ok {
		return nil, fmt.Errorf("unknown compiler driver %q", rule.Driver)
	}
	return d, nil
}

// prepareOutputDirs creates or checks the output directories of jobs.
// A missing directory is only a warning: the compiler reports the failure.
func (b *Builder) prepareOutputDirs(jobs []Job) error {
	if len(jobs) == 0 || b.Options.DryRun {
		return nil
	}
	dir := OutputDir(b.Options.Dir, b.Options.OutDir)
	if b.Options.MakeDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
		return nil
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		b.logger().Warn("output directory does not exist", "dir", dir)
	}
	return nil
}
