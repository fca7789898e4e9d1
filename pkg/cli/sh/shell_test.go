package sh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	b, err := ParseHex([]string{"0102", "ff"})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 0xff}, b)

	b, err = ParseHex(nil)
	require.NoError(t, err)
	require.Empty(t, b)

	_, err = ParseHex([]string{"1"})
	require.Error(t, err)
	_, err = ParseHex([]string{"zz"})
	require.Error(t, err)
}
