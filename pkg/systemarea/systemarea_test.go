package systemarea

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCopiesExactSize(t *testing.T) {
	data := make([]byte, Size+100)
	data[5] = 0xAB
	sa, err := Read(data)
	require.NoError(t, err)
	require.Equal(t, byte(0xAB), sa[5])
}

func TestReadRejectsShortInput(t *testing.T) {
	_, err := Read(make([]byte, Size-1))
	require.Error(t, err)
}
