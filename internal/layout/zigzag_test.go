package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToZigZagIndex(t *testing.T) {
	tests := []struct {
		name               string
		position, row, col int
		want               int
	}{
		{"origin", 0, 0, 0, 0},
		{"second goes below first", 1, 0, 0, 8},
		{"third goes right of first", 2, 0, 0, 1},
		{"last of first pair", 15, 0, 0, 15},
		{"next row pair", 16, 0, 0, 16},
		{"bottom of next row pair", 17, 0, 0, 24},
		{"third row pair", 33, 0, 0, 40},
		{"row offset", 0, 1, 0, 8},
		{"col offset", 3, 0, 2, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToZigZagIndex(tt.position, tt.row, tt.col)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToZigZagIndexRejectsNegative(t *testing.T) {
	for _, args := range [][3]int{{-1, 0, 0}, {0, -1, 0}, {0, 0, -1}} {
		_, err := ToZigZagIndex(args[0], args[1], args[2])
		assert.ErrorIs(t, err, ErrNegativeArgument)
	}
}

func TestToZigZagIndexFillsRowPairWithoutGaps(t *testing.T) {
	seen := make(map[int]bool)
	for p := 0; p < ZigZagPeriod; p++ {
		idx, err := ToZigZagIndex(p, 0, 0)
		require.NoError(t, err)
		assert.False(t, seen[idx], "index %d produced twice", idx)
		seen[idx] = true
	}
	for idx := 0; idx < ZigZagPeriod; idx++ {
		assert.True(t, seen[idx], "index %d never produced", idx)
	}
}
