package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileIdentifier(t *testing.T) {
	require.True(t, FileIdentifier("HELLO.TXT;1"))
	require.False(t, FileIdentifier("hello.txt"))
	require.False(t, FileIdentifier("BAD NAME.TXT;1"))
}

func TestDirIdentifier(t *testing.T) {
	require.True(t, DirIdentifier("SUBDIR"))
	require.True(t, DirIdentifier(string([]byte{0x00})))
	require.True(t, DirIdentifier(string([]byte{0x01})))
	require.False(t, DirIdentifier("sub.dir"))
}
