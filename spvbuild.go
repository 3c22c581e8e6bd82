// Package spvbuild compiles a directory of shader sources to SPIR-V in one pass.
//
// spvbuild enumerates shader files by extension, runs a compiler on each one
// and writes the result to an output directory under the same base name with
// a renamed extension. The default rules mirror the classic Vulkan layout:
//   - *.vert → ../spirv/<name>.vspv
//   - *.frag → ../spirv/<name>.fspv
//
// Example usage:
//
//	opts := spvbuild.DefaultOptions()
//	b := spvbuild.NewBuilder(opts, compiler.NewExternal("glslc"))
//	report, err := b.Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("compiled %d shaders\n", report.Compiled)
//
// Builds are strictly sequential: one compiler process runs at a time and
// files are visited in lexical order. A failing file does not stop the
// build unless Options.FailFast is set; all failures are returned together
// as a Failures error once every file has been attempted.
package spvbuild

// DefaultOutDir is the output directory used when none is configured,
// relative to the source directory.
const DefaultOutDir = "../spirv"

// Options configures planning and running a batch build.
type Options struct {
	// Dir is the directory scanned for shader sources (default: ".").
	Dir string

	// OutDir receives compiled artifacts. Relative paths are resolved
	// against Dir.
	OutDir string

	// Rules is the ordered extension mapping.
	Rules Rules

	// StripLastExt derives base names by removing only the source extension
	// (a.b.vert → a.b) instead of cutting at the first dot (a.b.vert → a).
	StripLastExt bool

	// FailFast stops the build at the first failing file.
	FailFast bool

	// DryRun prints commands without running them.
	DryRun bool

	// Verify checks that every artifact starts with a valid SPIR-V header.
	Verify bool

	// MakeDirs creates missing output directories before compiling.
	MakeDirs bool
}

// DefaultOptions returns options matching the classic build script.
func DefaultOptions() Options {
	return Options{
		Dir:    ".",
		OutDir: DefaultOutDir,
		Rules:  DefaultRules(),
	}
}
