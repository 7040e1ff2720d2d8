package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJoinOutputLines(t *testing.T) {
	out := joinOutputLines([]Val{StringVal("a"), IntVal(1), BoolVal(true)})
	require.Equal(t, "a\n1\nTrue", out)
}

func TestJoinOutputLinesEmpty(t *testing.T) {
	require.Equal(t, "", joinOutputLines(nil))
}

func TestBuildValidateArgsEmpty(t *testing.T) {
	args, err := buildValidateArgs("")
	require.NoError(t, err)
	require.Nil(t, args)
}

func TestBuildValidateArgsSplitsShellWords(t *testing.T) {
	args, err := buildValidateArgs(`-Foo "bar baz" -Switch`)
	require.NoError(t, err)
	require.Equal(t, []string{"-Foo", "bar baz", "-Switch"}, args)
}

func TestBuildValidateArgsUnterminatedQuoteErrors(t *testing.T) {
	_, err := buildValidateArgs(`-Foo "unterminated`)
	require.Error(t, err)
}
