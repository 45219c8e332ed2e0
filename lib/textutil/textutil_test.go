package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeFullWidth(t *testing.T) {
	testCases := []struct {
		in       string
		expected string
	}{
		{"１２월 ２일", "12월 2일"},
		{"hello", "hello"},
		{"Ａ　Ｂ", "A B"},
		{"“quoted”", `"quoted"`},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, NormalizeFullWidth(test.in))
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "돈까스", NormalizeName("  돈까스 \n"))
	require.Equal(t, "friedrice", NormalizeName("Fried Rice"))
}
