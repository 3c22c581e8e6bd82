// Package compiler provides the drivers that turn a planned job into a
// compiled SPIR-V artifact.
//
// # External compilers
//
// External runs a compiler executable once per job with the argument layout
// shared by glslc and glslangValidator:
//
//	<bin> [args...] <input> -o <output>
//
// The executable is looked up on PATH. A leading ~ is expanded, and when a
// bare name is not on PATH the Vulkan SDK's bin directory is tried.
//
// # In-process WGSL
//
// Naga compiles WGSL sources with github.com/gogpu/naga without spawning a
// process:
//
//	d := compiler.NewNaga()
//	err := d.Compile(ctx, job)
//
// # Echo
//
// Echo prints each command line before it runs, optionally colored with
// termenv when the output is a terminal.
package compiler
