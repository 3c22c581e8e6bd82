// spvinfo - prints the header and entry points of compiled SPIR-V modules
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogpu/spvbuild/spvcheck"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Usage: spvinfo <file.spv>...")
		return 2
	}
	code := 0
	for _, path := range args {
		if err := describe(stdout, path); err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", path, err)
			code = 1
		}
	}
	return code
}

func describe(w io.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	info, err := spvcheck.Inspect(data)
	if err != nil {
		return err
	}

	h := info.Header
	fmt.Fprintf(w, "%s:\n", path)
	fmt.Fprintf(w, "  Version:      %s\n", h.Version())
	fmt.Fprintf(w, "  Generator:    0x%08X\n", h.Generator)
	fmt.Fprintf(w, "  Bound:        %d\n", h.Bound)
	fmt.Fprintf(w, "  Instructions: %d\n", info.Instructions)
	if len(info.Capabilities) > 0 {
		fmt.Fprintf(w, "  Capabilities: %s\n", strings.Join(info.Capabilities, ", "))
	}
	for _, ep := range info.EntryPoints {
		fmt.Fprintf(w, "  EntryPoint:   %s %q\n", ep.Model, ep.Name)
	}
	return nil
}
