package spvbuild

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Rule maps a shader source extension to the extension of its compiled output.
type Rule struct {
	// Source is the source extension without the leading dot (e.g., "vert").
	Source string `toml:"source" yaml:"source"`

	// Output is the output extension without the leading dot (e.g., "vspv").
	Output string `toml:"output" yaml:"output"`

	// Driver names the compiler driver for this rule. Empty selects the
	// builder's default driver.
	Driver string `toml:"compiler,omitempty" yaml:"compiler,omitempty"`
}

// String returns the rule in the form accepted by ParseRule.
func (r Rule) String() string {
	if r.Driver == "" {
		return r.Source + "=" + r.Output
	}
	return r.Source + "=" + r.Output + ":" + r.Driver
}

// Pattern returns the file name pattern matched by the rule.
func (r Rule) Pattern() string {
	return "*." + r.Source
}

// Rules is an ordered extension mapping.
type Rules []Rule

// DefaultRules returns the vertex and fragment mapping, in that order.
func DefaultRules() Rules {
	return Rules{
		{Source: "vert", Output: "vspv"},
		{Source: "frag", Output: "fspv"},
	}
}

// ParseRule parses "src=out" or "src=out:driver". Leading dots on either
// extension are ignored.
func ParseRule(s string) (Rule, error) {
	src, rest, ok := strings.Cut(s, "=")
	if !ok {
		return Rule{}, fmt.Errorf("rule %q: want src=out", s)
	}
	out, driver, _ := strings.Cut(rest, ":")
	r := Rule{
		Source: strings.TrimPrefix(strings.TrimSpace(src), "."),
		Output: strings.TrimPrefix(strings.TrimSpace(out), "."),
		Driver: strings.TrimSpace(driver),
	}
	if err := r.validate(); err != nil {
		return Rule{}, err
	}
	return r, nil
}

func (r Rule) validate() error {
	if r.Source == "" {
		return fmt.Errorf("rule %q: empty source extension", r.String())
	}
	if r.Output == "" {
		return fmt.Errorf("rule %q: empty output extension", r.String())
	}
	const reserved = `/\*?[]{}!`
	if strings.ContainsAny(r.Source, reserved) || strings.ContainsAny(r.Output, reserved) {
		return fmt.Errorf("rule %q: extension contains one of %s", r.String(), reserved)
	}
	return nil
}

// Validate reports an error if any rule is malformed or if a source
// extension is mapped more than once.
func (rs Rules) Validate() error {
	if len(rs) == 0 {
		return fmt.Errorf("no rules configured")
	}
	seen := make(map[string]bool, len(rs))
	for _, r := range rs {
		if err := r.validate(); err != nil {
			return err
		}
		if seen[r.Source] {
			return fmt.Errorf("source extension %q mapped more than once", r.Source)
		}
		seen[r.Source] = true
	}
	return nil
}

// Match returns the first rule whose pattern matches the file name.
// Hidden files never match.
func (rs Rules) Match(name string) (Rule, bool) {
	if strings.HasPrefix(name, ".") {
		return Rule{}, false
	}
	for _, r := range rs {
		g, err := glob.Compile(r.Pattern())
		if err != nil {
			continue
		}
		if g.Match(name) {
			return r, true
		}
	}
	return Rule{}, false
}
