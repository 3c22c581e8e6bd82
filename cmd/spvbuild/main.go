// Command spvbuild compiles every shader in a directory to SPIR-V.
//
// Usage:
//
//	spvbuild [options] [dir]
//
// Examples:
//
//	spvbuild                               # *.vert → ../spirv/*.vspv, *.frag → ../spirv/*.fspv
//	spvbuild -n shaders                    # Print the commands only
//	spvbuild -compiler glslangValidator -args=-V
//	spvbuild -rule wgsl=spv:naga -o out    # Compile WGSL in process
//	spvbuild -watch -mkdir                 # Rebuild on change
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gogpu/spvbuild"
	"github.com/gogpu/spvbuild/config"
	"github.com/gogpu/spvbuild/watch"
)

const spvbuildVersion = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("spvbuild", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(fs) }

	var flags config.Flags
	flags.Register(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if flags.Version {
		fmt.Fprintf(stdout, "spvbuild version %s\n", spvbuildVersion)
		return 0
	}
	if fs.NArg() > 1 {
		fmt.Fprintln(stderr, "Error: at most one source directory")
		usage(fs)
		return 2
	}

	level := slog.LevelInfo
	if flags.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := flags.Resolve(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	builder, err := cfg.NewBuilder(stdout, stderr, logger)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	if cfg.Watch {
		w := &watch.Watcher{
			Dir:    cfg.Dir,
			Rules:  cfg.Rules,
			Logger: logger,
			Build: func(ctx context.Context) error {
				_, err := builder.Build(ctx)
				return err
			},
		}
		if err := w.Run(ctx); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	report, err := builder.Build(ctx)
	if err != nil {
		var failures spvbuild.Failures
		if errors.As(err, &failures) {
			fmt.Fprintln(stderr, failures.Summary())
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	logger.Debug("build finished", "compiled", report.Compiled)
	return 0
}

func usage(fs *flag.FlagSet) {
	w := fs.Output()
	fmt.Fprintf(w, "Usage: spvbuild [options] [dir]\n\n")
	fmt.Fprintf(w, "Compiles *.vert and *.frag in dir (default: .) into ../spirv.\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nEnvironment:\n")
	fmt.Fprintf(w, "  %s, %s, %s override the manifest; %s locates glslc.\n",
		config.EnvCompiler, config.EnvArgs, config.EnvOut, config.EnvSDK)
	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  spvbuild                        Compile the current directory\n")
	fmt.Fprintf(w, "  spvbuild -n shaders             Print commands without running them\n")
	fmt.Fprintf(w, "  spvbuild -rule wgsl=spv:naga    Compile WGSL with the built-in compiler\n")
}
