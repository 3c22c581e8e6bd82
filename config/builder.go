package config

import (
	"io"
	"log/slog"

	"github.com/gogpu/spvbuild"
	"github.com/gogpu/spvbuild/compiler"
)

// NewBuilder wires a builder for c. Compiler output goes to stdout and
// stderr, and commands are echoed to stdout.
//
// Rules that name the "naga" driver compile in process. Any other driver
// name is run as an executable with the external argument layout but
// without the configured default args.
func (c *Config) NewBuilder(stdout, stderr io.Writer, logger *slog.Logger) (*spvbuild.Builder, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts, err := c.Options()
	if err != nil {
		return nil, err
	}
	echo, err := compiler.NewEcho(stdout, c.Color)
	if err != nil {
		return nil, err
	}

	b := spvbuild.NewBuilder(opts, c.external(c.Compiler, c.Args, stdout, stderr))
	b.Printer = echo
	b.Logger = logger
	for _, r := range c.Rules {
		if r.Driver == "" {
			continue
		}
		if _, ok := b.Drivers[r.Driver]; ok {
			continue
		}
		if r.Driver == compiler.NagaName {
			n := compiler.NewNaga()
			n.Options.Debug = c.NagaDebug
			b.Drivers[r.Driver] = n
			continue
		}
		b.Drivers[r.Driver] = c.external(r.Driver, nil, stdout, stderr)
	}
	return b, nil
}

func (c *Config) external(bin string, args []string, stdout, stderr io.Writer) *compiler.External {
	return &compiler.External{
		Bin:    bin,
		Args:   args,
		SDKDir: c.SDKDir,
		Stdout: stdout,
		Stderr: stderr,
	}
}
