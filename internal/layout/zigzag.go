package layout

import (
	"errors"
	"fmt"
)

// Grid geometry of a tag tab.
const (
	RowWidth = 8
	// ZigZagPeriod is the number of sequence positions that fill one pair of rows.
	ZigZagPeriod = 2 * RowWidth
)

// ErrNegativeArgument is returned by ToZigZagIndex for negative input.
var ErrNegativeArgument = errors.New("zigzag arguments must be non-negative")

// ToZigZagIndex maps a sequence position to a slot index, filling each pair of
// rows top, bottom, top, bottom from left to right. row and col offset the
// result by whole rows and columns.
func ToZigZagIndex(position, row, col int) (int, error) {
	if position < 0 || row < 0 || col < 0 {
		return 0, fmt.Errorf("%w: position=%d row=%d col=%d", ErrNegativeArgument, position, row, col)
	}

	row += (position / ZigZagPeriod) * 2
	position %= ZigZagPeriod

	index := 0
	if position%2 == 1 {
		index += RowWidth
	}
	index += position / 2
	index += row*RowWidth + col
	return index, nil
}
