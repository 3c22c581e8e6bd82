package spvbuild

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// Shader is a source file discovered in the source directory.
type Shader struct {
	Name string // file name, e.g. "a.b.vert"
	Base string // derived base name, e.g. "a"
	Rule Rule   // rule that matched the file
}

// Job is a single planned compilation.
type Job struct {
	Shader Shader
	Input  string // path of the source file
	Output string // path of the artifact to produce
}

// Plan lists the compilations for opts without running anything.
//
// Rules are visited in declared order; within a rule, files are visited in
// lexical order. Only regular, non-hidden entries of opts.Dir are
// considered.
func Plan(opts Options) ([]Job, error) {
	if err := opts.Rules.Validate(); err != nil {
		return nil, err
	}
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	outDir := OutputDir(dir, opts.OutDir)

	var jobs []Job
	for _, rule := range opts.Rules {
		g, err := glob.Compile(rule.Pattern())
		if err != nil {
			return nil, fmt.Errorf("rule %s: %w", rule, err)
		}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || !g.Match(name) {
				continue
			}
			base := BaseName(name, rule.Source, opts.StripLastExt)
			jobs = append(jobs, Job{
				Shader: Shader{Name: name, Base: base, Rule: rule},
				Input:  filepath.Join(dir, name),
				Output: filepath.Join(outDir, base+"."+rule.Output),
			})
		}
	}
	return jobs, nil
}

// OutputDir resolves out against the source directory dir. An empty out
// selects DefaultOutDir.
func OutputDir(dir, out string) string {
	if out == "" {
		out = DefaultOutDir
	}
	if filepath.IsAbs(out) {
		return filepath.Clean(out)
	}
	return filepath.Join(dir, out)
}

// BaseName derives the artifact base name of a source file.
//
// By default the name is cut at its first dot, so "a.b.vert" yields "a".
// With stripLastExt only the source extension is removed and "a.b.vert"
// yields "a.b".
func BaseName(name, ext string, stripLastExt bool) string {
	if stripLastExt {
		return strings.TrimSuffix(name, "."+ext)
	}
	base, _, _ := strings.Cut(name, ".")
	return base
}
