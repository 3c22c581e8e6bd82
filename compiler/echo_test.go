package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{"glslc", "glslc"},
		{"../spirv/foo.vspv", "../spirv/foo.vspv"},
		{"--target-env=vulkan1.2", "--target-env=vulkan1.2"},
		{"", "''"},
		{"my shader.vert", "'my shader.vert'"},
		{"it's.frag", `'it'\''s.frag'`},
		{`..\spirv\foo.vspv`, `'..\spirv\foo.vspv'`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Quote(tt.arg), "Quote(%q)", tt.arg)
	}
}

func TestEchoPlain(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEcho(&buf, ColorNever)
	require.NoError(t, err)

	e.PrintCommand([]string{"glslc", "foo.vert", "-o", "../spirv/foo.vspv"})
	e.PrintCommand([]string{"glslc", "my bar.frag", "-o", "../spirv/my.fspv"})

	assert.Equal(t,
		"glslc foo.vert -o ../spirv/foo.vspv\n"+
			"glslc 'my bar.frag' -o ../spirv/my.fspv\n",
		buf.String())
}

func TestEchoColor(t *testing.T) {
	var buf bytes.Buffer
	e, err := NewEcho(&buf, ColorAlways)
	require.NoError(t, err)

	e.PrintCommand([]string{"glslc", "foo.vert", "-o", "out.vspv"})
	assert.Contains(t, buf.String(), "\x1b[")
	assert.Contains(t, buf.String(), "foo.vert")
}

func TestEchoUnknownMode(t *testing.T) {
	_, err := NewEcho(&bytes.Buffer{}, "sometimes")
	assert.Error(t, err)
}
