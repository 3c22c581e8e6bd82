// Package config resolves spvbuild settings from built-in defaults, a
// manifest file, the environment and command-line flags, in increasing order
// of precedence.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-shellwords"
	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/spvbuild"
	"github.com/gogpu/spvbuild/compiler"
)

// Environment variables read by LoadEnv.
const (
	EnvCompiler = "SPVBUILD_COMPILER"
	EnvArgs     = "SPVBUILD_ARGS"
	EnvOut      = "SPVBUILD_OUT"
	EnvSDK      = "VULKAN_SDK"
)

// ManifestNames are the file names FindManifest looks for, in order.
var ManifestNames = []string{"spvbuild.toml", "spvbuild.yaml", "spvbuild.yml"}

// Config holds every resolved setting.
type Config struct {
	Dir      string
	Compiler string
	Args     []string
	Out      string
	Rules    spvbuild.Rules
	SDKDir   string
	Color    string

	StripLastExt bool
	FailFast     bool
	DryRun       bool
	Verify       bool
	MakeDirs     bool
	Watch        bool

	// NagaDebug emits debug info from the in-process WGSL compiler.
	NagaDebug bool
}

// Default returns the settings of the classic build script.
func Default() Config {
	return Config{
		Dir:      ".",
		Compiler: compiler.DefaultBin,
		Out:      spvbuild.DefaultOutDir,
		Rules:    spvbuild.DefaultRules(),
		Color:    compiler.ColorAuto,
	}
}

// manifest mirrors the manifest file. Pointer fields distinguish unset keys
// from zero values.
type manifest struct {
	Compiler     *string         `toml:"compiler" yaml:"compiler"`
	Args         *string         `toml:"args" yaml:"args"`
	Out          *string         `toml:"out" yaml:"out"`
	StripLastExt *bool           `toml:"strip_last_ext" yaml:"strip_last_ext"`
	MakeDirs     *bool           `toml:"mkdir" yaml:"mkdir"`
	Verify       *bool           `toml:"verify" yaml:"verify"`
	FailFast     *bool           `toml:"fail_fast" yaml:"fail_fast"`
	NagaDebug    *bool           `toml:"naga_debug" yaml:"naga_debug"`
	Rules        []spvbuild.Rule `toml:"rule" yaml:"rules"`
}

// FindManifest returns the first manifest present in dir.
func FindManifest(dir string) (string, bool) {
	for _, name := range ManifestNames {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// LoadFile merges the manifest at path into c. The format follows the file
// extension: .toml, .yaml or .yml. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&m)
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&m); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return fmt.Errorf("manifest %s: unsupported format %q", path, ext)
	}
	if err != nil {
		return fmt.Errorf("manifest %s: %w", path, err)
	}
	return c.merge(m)
}

func (c *Config) merge(m manifest) error {
	if m.Compiler != nil {
		c.Compiler = *m.Compiler
	}
	if m.Args != nil {
		args, err := ParseArgs(*m.Args)
		if err != nil {
			return err
		}
		c.Args = args
	}
	if m.Out != nil {
		c.Out = *m.Out
	}
	setBool(&c.StripLastExt, m.StripLastExt)
	setBool(&c.MakeDirs, m.MakeDirs)
	setBool(&c.Verify, m.Verify)
	setBool(&c.FailFast, m.FailFast)
	setBool(&c.NagaDebug, m.NagaDebug)
	if len(m.Rules) > 0 {
		rules := make(spvbuild.Rules, len(m.Rules))
		for i, r := range m.Rules {
			r.Source = strings.TrimPrefix(r.Source, ".")
			r.Output = strings.TrimPrefix(r.Output, ".")
			rules[i] = r
		}
		c.Rules = rules
	}
	return nil
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// LoadEnv applies the environment to c. Variables already set in the process
// environment take precedence over a .env file in c.Dir.
func (c *Config) LoadEnv() error {
	dotenv, err := godotenv.Read(filepath.Join(c.Dir, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvCompiler); ok && v != "" {
		c.Compiler = v
	}
	if v, ok := lookup(EnvArgs); ok {
		args, err := ParseArgs(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvArgs, err)
		}
		c.Args = args
	}
	if v, ok := lookup(EnvOut); ok && v != "" {
		c.Out = v
	}
	if v, ok := lookup(EnvSDK); ok {
		c.SDKDir = v
	}
	return nil
}

// ParseArgs splits a shell-quoted argument string.
func ParseArgs(s string) ([]string, error) {
	args, err := shellwords.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("parse compiler args %q: %w", s, err)
	}
	return args, nil
}

// Validate checks the resolved settings.
func (c *Config) Validate() error {
	if err := c.Rules.Validate(); err != nil {
		return err
	}
	if c.Compiler == "" {
		return errors.New("no compiler configured")
	}
	switch c.Color {
	case "", compiler.ColorAuto, compiler.ColorAlways, compiler.ColorNever:
	default:
		return fmt.Errorf("unknown color mode %q", c.Color)
	}
	return nil
}

// Options returns the build options described by c.
func (c *Config) Options() (spvbuild.Options, error) {
	out, err := homedir.Expand(c.Out)
	if err != nil {
		return spvbuild.Options{}, fmt.Errorf("expand output directory: %w", err)
	}
	return spvbuild.Options{
		Dir:          c.Dir,
		OutDir:       out,
		Rules:        c.Rules,
		StripLastExt: c.StripLastExt,
		FailFast:     c.FailFast,
		DryRun:       c.DryRun,
		Verify:       c.Verify,
		MakeDirs:     c.MakeDirs,
	}, nil
}
