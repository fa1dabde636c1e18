package importer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTailBufferKeepsEverythingUnderLimit(t *testing.T) {
	b := newTailBuffer(16)
	for _, s := range []string{"disk ", "full", "\n"} {
		n, err := b.Write([]byte(s))
		require.NoError(t, err)
		require.Equal(t, len(s), n)
	}
	require.False(t, b.Truncated())
	require.Equal(t, "disk full\n", b.String())
}

func TestTailBufferKeepsTail(t *testing.T) {
	tests := []struct {
		name   string
		writes []string
		want   string
	}{
		{name: "small writes overflow", writes: []string{"0123456789", "abcdefgh"}, want: "[2 earlier bytes dropped]\n23456789abcdefgh"},
		{name: "single large write", writes: []string{strings.Repeat("x", 20) + "ERROR 1: end"}, want: "[16 earlier bytes dropped]\nxxxxERROR 1: end"},
		{name: "large write after small", writes: []string{"abc", strings.Repeat("y", 16)}, want: "[3 earlier bytes dropped]\n" + strings.Repeat("y", 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTailBuffer(16)
			for _, s := range tt.writes {
				n, err := b.Write([]byte(s))
				require.NoError(t, err)
				require.Equal(t, len(s), n)
			}
			require.True(t, b.Truncated())
			require.Equal(t, tt.want, b.String())
		})
	}
}
