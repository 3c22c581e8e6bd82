package compiler

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Color modes accepted by NewEcho.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Echo prints command lines, one per line, shell-quoted.
type Echo struct {
	out *termenv.Output
}

// NewEcho returns an Echo writing to w. mode is one of ColorAuto,
// ColorAlways or ColorNever; auto colors only when w is a terminal.
func NewEcho(w io.Writer, mode string) (*Echo, error) {
	var opts []termenv.OutputOption
	switch mode {
	case "", ColorAuto:
	case ColorAlways:
		opts = append(opts, termenv.WithProfile(termenv.ANSI))
	case ColorNever:
		opts = append(opts, termenv.WithProfile(termenv.Ascii))
	default:
		return nil, fmt.Errorf("unknown color mode %q", mode)
	}
	return &Echo{out: termenv.NewOutput(w, opts...)}, nil
}

// PrintCommand writes args as a single shell-quoted line. The executable is
// printed in bold and flags in cyan.
func (e *Echo) PrintCommand(args []string) {
	parts := make([]string, len(args))
	for i, arg := range args {
		s := e.out.String(Quote(arg))
		switch {
		case i == 0:
			s = s.Bold()
		case strings.HasPrefix(arg, "-"):
			s = s.Foreground(e.out.Color("6"))
		}
		parts[i] = s.String()
	}
	fmt.Fprintln(e.out, strings.Join(parts, " "))
}

// Quote returns arg quoted for a POSIX shell when it contains anything other
// than letters, digits and -_./=:+,@%.
func Quote(arg string) string {
	if arg == "" {
		return "''"
	}
	safe := true
	for _, r := range arg {
		if !isSafe(r) {
			safe = false
			break
		}
	}
	if safe {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}

func isSafe(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./=:+,@%", r)
}
