package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/gogpu/spvbuild"
)

// Flags holds the command-line settings. Only flags that were set on the
// command line override the other sources.
type Flags struct {
	fs *flag.FlagSet

	ConfigPath   string
	Compiler     string
	Args         string
	Out          string
	Rules        ruleList
	Color        string
	DryRun       bool
	FailFast     bool
	MakeDirs     bool
	StripLastExt bool
	Verify       bool
	Watch        bool
	NagaDebug    bool
	Verbose      bool
	Version      bool
}

// Register defines the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.ConfigPath, "config", "", "manifest file (default: spvbuild.toml/.yaml in the source directory)")
	fs.StringVar(&f.Compiler, "compiler", "", "compiler executable (default: glslc)")
	fs.StringVar(&f.Args, "args", "", "extra compiler arguments, shell-quoted")
	fs.StringVar(&f.Out, "o", "", "output directory, relative to the source directory (default: ../spirv)")
	fs.Var(&f.Rules, "rule", "extension rule src=out[:driver]; repeatable, replaces the default rules")
	fs.StringVar(&f.Color, "color", "", "color echoed commands: auto, always or never")
	fs.BoolVar(&f.DryRun, "n", false, "print commands without running them")
	fs.BoolVar(&f.FailFast, "fail-fast", false, "stop at the first failing shader")
	fs.BoolVar(&f.MakeDirs, "mkdir", false, "create the output directory if missing")
	fs.BoolVar(&f.StripLastExt, "strip-last-ext", false, "strip only the source extension when naming outputs")
	fs.BoolVar(&f.Verify, "verify", false, "check that outputs are SPIR-V modules")
	fs.BoolVar(&f.Watch, "watch", false, "rebuild when sources change")
	fs.BoolVar(&f.NagaDebug, "naga-debug", false, "include debug info in naga-compiled shaders")
	fs.BoolVar(&f.Verbose, "v", false, "verbose logging")
	fs.BoolVar(&f.Version, "version", false, "print version")
}

// Apply copies every flag set on the command line into c.
func (f *Flags) Apply(c *Config) error {
	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		switch fl.Name {
		case "compiler":
			c.Compiler = f.Compiler
		case "args":
			c.Args, err = ParseArgs(f.Args)
		case "o":
			c.Out = f.Out
		case "rule":
			c.Rules = spvbuild.Rules(f.Rules)
		case "color":
			c.Color = f.Color
		case "n":
			c.DryRun = f.DryRun
		case "fail-fast":
			c.FailFast = f.FailFast
		case "mkdir":
			c.MakeDirs = f.MakeDirs
		case "strip-last-ext":
			c.StripLastExt = f.StripLastExt
		case "verify":
			c.Verify = f.Verify
		case "watch":
			c.Watch = f.Watch
		case "naga-debug":
			c.NagaDebug = f.NagaDebug
		}
	})
	return err
}

// Resolve loads the full configuration for the source directory dir:
// defaults, then the manifest, then the environment, then f.
func (f *Flags) Resolve(dir string) (Config, error) {
	c := Default()
	if dir != "" {
		c.Dir = dir
	}

	path := f.ConfigPath
	if path == "" {
		path, _ = FindManifest(c.Dir)
	}
	if path != "" {
		if err := c.LoadFile(path); err != nil {
			return c, err
		}
	}
	if err := c.LoadEnv(); err != nil {
		return c, err
	}
	if err := f.Apply(&c); err != nil {
		return c, err
	}
	return c, c.Validate()
}

type ruleList spvbuild.Rules

func (l *ruleList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, r := range *l {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

func (l *ruleList) Set(s string) error {
	r, err := spvbuild.ParseRule(s)
	if err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}
	*l = append(*l, r)
	return nil
}
