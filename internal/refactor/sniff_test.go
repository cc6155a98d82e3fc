package refactor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSniff(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		data  []byte
		lines int
	}{
		{"empty", nil, 0},
		{"trailing newline", []byte("a\nb\n"), 2},
		{"no trailing newline", []byte("a\nb"), 2},
		{"blank lines", []byte("\n\n\n"), 3},
		{"nul past sniff window", append(bytes.Repeat([]byte("x"), sniffLength), 0), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := sniff(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.lines, got)
		})
	}
}

func TestSniff_Binary(t *testing.T) {
	t.Parallel()

	_, err := sniff([]byte("class A {\x00}"))
	require.ErrorIs(t, err, errBinary)

	_, err = sniff(append(bytes.Repeat([]byte("x"), sniffLength-1), 0))
	require.ErrorIs(t, err, errBinary)
}
