package quadgrid

import (
	"fmt"
	"math/bits"
)

// QuadKey is the bijective mapping between a (global row, global column)
// cell index pair and a single integer qid at a fixed resolution.
//
// The row index needs ceil(log2(rowsGlobal)) bits; the column index needs
// exactly one more because the globe is twice as wide as it is tall. The
// qid interleaves the two MSB-first, column bit before row bit at each
// level, with the lone extra column bit on top (it alone picks the
// western or eastern hemisphere). Read as successive 2-bit groups the
// value walks the quadtree one quadrant per level, which gives qids the
// usual Z-order locality: cells sharing a coarse quadrant share their top
// bits. The qid is reported as a plain decimal integer; only its binary
// form carries quadrant meaning.
type QuadKey struct {
	rowBits    int
	rowsGlobal int
	colsGlobal int
}

// NewQuadKey builds the key codec for a resolution. The resolution must
// evenly divide 180 degrees, same as grid construction.
func NewQuadKey(res float64) (QuadKey, error) {
	rowsGlobal, err := globalRows(res)
	if err != nil {
		return QuadKey{}, err
	}
	return newQuadKey(rowsGlobal)
}

func newQuadKey(rowsGlobal int) (QuadKey, error) {
	rowBits := bits.Len(uint(rowsGlobal - 1))
	if 2*rowBits+1 > 62 {
		return QuadKey{}, fmt.Errorf("%w: grid of %d rows exceeds the qid bit width", ErrConfiguration, rowsGlobal)
	}
	return QuadKey{
		rowBits:    rowBits,
		rowsGlobal: rowsGlobal,
		colsGlobal: 2 * rowsGlobal,
	}, nil
}

// Levels is the quadtree depth below the hemisphere split.
func (k QuadKey) Levels() int { return k.rowBits }

// Encode maps a global (row, col) index pair to its qid.
func (k QuadKey) Encode(row, col int) (int64, error) {
	if row < 0 || row >= k.rowsGlobal {
		return 0, fmt.Errorf("%w: row %d not in [0, %d)", ErrIndex, row, k.rowsGlobal)
	}
	if col < 0 || col >= k.colsGlobal {
		return 0, fmt.Errorf("%w: col %d not in [0, %d)", ErrIndex, col, k.colsGlobal)
	}

	qid := int64(col>>uint(k.rowBits)) & 1
	for i := k.rowBits - 1; i >= 0; i-- {
		qid = qid<<2 | int64((col>>uint(i))&1)<<1 | int64((row>>uint(i))&1)
	}
	return qid, nil
}

// Decode is the exact inverse of Encode.
func (k QuadKey) Decode(qid int64) (row, col int, err error) {
	if qid < 0 || qid >= 1<<uint(2*k.rowBits+1) {
		return 0, 0, fmt.Errorf("%w: qid %d outside the %d-bit width of this resolution", ErrIndex, qid, 2*k.rowBits+1)
	}

	v := uint64(qid)
	for i := 0; i < k.rowBits; i++ {
		row |= int((v>>uint(2*i))&1) << uint(i)
		col |= int((v>>uint(2*i+1))&1) << uint(i)
	}
	col |= int((v>>uint(2*k.rowBits))&1) << uint(k.rowBits)

	if row >= k.rowsGlobal || col >= k.colsGlobal {
		return 0, 0, fmt.Errorf("%w: qid %d names no cell in a %dx%d grid", ErrIndex, qid, k.rowsGlobal, k.colsGlobal)
	}
	return row, col, nil
}
