package config

import (
	"bytes"
	"flag"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/spvbuild"
	"github.com/gogpu/spvbuild/compiler"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// clearEnv unsets the variables LoadEnv reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvCompiler, EnvArgs, EnvOut, EnvSDK} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("spvbuild", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var f Flags
	f.Register(fs)
	require.NoError(t, fs.Parse(args))
	return &f
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())

	opts, err := c.Options()
	require.NoError(t, err)
	assert.Equal(t, spvbuild.DefaultOptions(), opts)
	assert.Equal(t, "glslc", c.Compiler)
}

const tomlManifest = `
compiler = "glslangValidator"
args = "-V --target-env 'vulkan1.2'"
out = "build/spirv"
strip_last_ext = true
mkdir = true

[[rule]]
source = "vert"
output = "vspv"

[[rule]]
source = ".wgsl"
output = "spv"
compiler = "naga"
`

func TestLoadFileTOML(t *testing.T) {
	c := Default()
	require.NoError(t, c.LoadFile(writeFile(t, t.TempDir(), "spvbuild.toml", tomlManifest)))

	assert.Equal(t, "glslangValidator", c.Compiler)
	assert.Equal(t, []string{"-V", "--target-env", "vulkan1.2"}, c.Args)
	assert.Equal(t, "build/spirv", c.Out)
	assert.True(t, c.StripLastExt)
	assert.True(t, c.MakeDirs)
	assert.False(t, c.Verify)
	assert.Equal(t, spvbuild.Rules{
		{Source: "vert", Output: "vspv"},
		{Source: "wgsl", Output: "spv", Driver: "naga"},
	}, c.Rules)
}

const yamlManifest = `
compiler: glslc
verify: true
rules:
  - source: comp
    output: cspv
`

func TestLoadFileYAML(t *testing.T) {
	c := Default()
	require.NoError(t, c.LoadFile(writeFile(t, t.TempDir(), "spvbuild.yml", yamlManifest)))

	assert.True(t, c.Verify)
	assert.Equal(t, spvbuild.DefaultOutDir, c.Out, "unset keys keep their defaults")
	assert.Equal(t, spvbuild.Rules{{Source: "comp", Output: "cspv"}}, c.Rules)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	c := Default()

	assert.ErrorContains(t, c.LoadFile(writeFile(t, dir, "a.toml", "compilr = \"glslc\"\n")), "a.toml")
	assert.Error(t, c.LoadFile(writeFile(t, dir, "b.yaml", "outdir: x\n")))
	assert.ErrorContains(t, c.LoadFile(writeFile(t, dir, "c.json", "{}")), "unsupported format")
	assert.ErrorContains(t, c.LoadFile(writeFile(t, dir, "d.toml", "args = \"-O 'unterminated\"\n")), "parse compiler args")
	assert.ErrorContains(t, c.LoadFile(filepath.Join(dir, "missing.toml")), "read manifest")

	empty := Default()
	require.NoError(t, empty.LoadFile(writeFile(t, dir, "empty.yaml", "")))
	assert.Equal(t, Default(), empty)
}

func TestFindManifest(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindManifest(dir)
	assert.False(t, ok)

	writeFile(t, dir, "spvbuild.yaml", yamlManifest)
	p, ok := FindManifest(dir)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "spvbuild.yaml"), p)

	writeFile(t, dir, "spvbuild.toml", tomlManifest)
	p, _ = FindManifest(dir)
	assert.Equal(t, filepath.Join(dir, "spvbuild.toml"), p)
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SPVBUILD_COMPILER=/opt/sdk/glslc\nSPVBUILD_OUT=out\nVULKAN_SDK=/opt/sdk\n")
	t.Setenv(EnvOut, "from-env")
	t.Setenv(EnvArgs, `-O -DNAME="a b"`)

	c := Default()
	c.Dir = dir
	require.NoError(t, c.LoadEnv())

	assert.Equal(t, "/opt/sdk/glslc", c.Compiler)
	assert.Equal(t, "from-env", c.Out, "process environment wins over .env")
	assert.Equal(t, []string{"-O", "-DNAME=a b"}, c.Args)
	assert.Equal(t, "/opt/sdk", c.SDKDir)
}

func TestLoadEnvWithoutDotenv(t *testing.T) {
	clearEnv(t)
	c := Default()
	c.Dir = t.TempDir()
	require.NoError(t, c.LoadEnv())
	assert.Equal(t, Default().Compiler, c.Compiler)
}

func TestResolvePrecedence(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "spvbuild.toml", tomlManifest)
	t.Setenv(EnvCompiler, "glslc-env")

	c, err := parseFlags(t).Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "glslc-env", c.Compiler, "environment overrides manifest")
	assert.Equal(t, "build/spirv", c.Out)

	c, err = parseFlags(t, "-compiler", "glslc-flag", "-o", "out", "-rule", "frag=fspv", "-n").Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, "glslc-flag", c.Compiler, "flags override environment")
	assert.Equal(t, "out", c.Out)
	assert.Equal(t, spvbuild.Rules{{Source: "frag", Output: "fspv"}}, c.Rules)
	assert.True(t, c.DryRun)
	assert.True(t, c.StripLastExt, "unset flags keep manifest values")
}

func TestResolveExplicitConfig(t *testing.T) {
	clearEnv(t)
	manifest := writeFile(t, t.TempDir(), "shaders.yaml", yamlManifest)

	c, err := parseFlags(t, "-config", manifest).Resolve(t.TempDir())
	require.NoError(t, err)
	assert.True(t, c.Verify)
}

func TestFlagErrors(t *testing.T) {
	fs := flag.NewFlagSet("spvbuild", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var f Flags
	f.Register(fs)
	assert.Error(t, fs.Parse([]string{"-rule", "vert"}))

	clearEnv(t)
	_, err := parseFlags(t, "-color", "sometimes").Resolve(t.TempDir())
	assert.ErrorContains(t, err, "color")

	_, err = parseFlags(t, "-args", "'open").Resolve(t.TempDir())
	assert.Error(t, err)
}

func TestNewBuilder(t *testing.T) {
	c := Default()
	c.Color = compiler.ColorNever
	c.Args = []string{"-O"}
	c.Rules = append(c.Rules,
		spvbuild.Rule{Source: "wgsl", Output: "spv", Driver: compiler.NagaName},
		spvbuild.Rule{Source: "hlsl", Output: "hspv", Driver: "dxc"},
	)
	c.NagaDebug = true

	var stdout bytes.Buffer
	b, err := c.NewBuilder(&stdout, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	ext, ok := b.Driver.(*compiler.External)
	require.True(t, ok)
	assert.Equal(t, "glslc", ext.Bin)
	assert.Equal(t, []string{"-O"}, ext.Args)

	n, ok := b.Drivers[compiler.NagaName].(*compiler.Naga)
	require.True(t, ok)
	assert.True(t, n.Options.Debug)

	dxc, ok := b.Drivers["dxc"].(*compiler.External)
	require.True(t, ok)
	assert.Equal(t, "dxc", dxc.Bin)
	assert.Empty(t, dxc.Args)
}

func TestNewBuilderDryRunEcho(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "foo.vert", "")
	writeFile(t, dir, "bar.frag", "")

	c := Default()
	c.Dir = dir
	c.Color = compiler.ColorNever
	c.DryRun = true

	var stdout bytes.Buffer
	b, err := c.NewBuilder(&stdout, io.Discard, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	report, err := b.Build(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 2, report.Planned)
	assert.Equal(t,
		"glslc "+filepath.Join(dir, "foo.vert")+" -o "+filepath.Join(filepath.Dir(dir), "spirv", "foo.vspv")+"\n"+
			"glslc "+filepath.Join(dir, "bar.frag")+" -o "+filepath.Join(filepath.Dir(dir), "spirv", "bar.fspv")+"\n",
		stdout.String())
}
