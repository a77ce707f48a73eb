package vectorstore

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrRaggedRows is returned when the rows of a matrix have different widths.
var ErrRaggedRows = errors.New("matrix rows have different widths")

// Matrix is a read-only dense factor matrix. Row i holds the vector of the
// entity whose mapping index is i. A matrix with zero rows is valid and has
// no backing storage.
type Matrix struct {
	dense *mat.Dense
}

// NewMatrix builds a Matrix from row slices. All rows must have the same,
// non-zero width.
func NewMatrix(rows [][]float64) (*Matrix, error) {
	if len(rows) == 0 {
		return &Matrix{}, nil
	}

	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("row 0: %w: empty row", ErrRaggedRows)
	}

	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d columns, expected %d: %w", i, len(row), width, ErrRaggedRows)
		}
		data = append(data, row...)
	}

	return &Matrix{dense: mat.NewDense(len(rows), width, data)}, nil
}

// Rows returns the number of rows, 0 for a nil matrix.
func (m *Matrix) Rows() int {
	if m == nil || m.dense == nil {
		return 0
	}
	r, _ := m.dense.Dims()
	return r
}

// Cols returns the row width, 0 for an empty matrix.
func (m *Matrix) Cols() int {
	if m == nil || m.dense == nil {
		return 0
	}
	_, c := m.dense.Dims()
	return c
}

// Row returns a view of row i without copying. Callers must not modify it.
// It panics if i is out of range; use RowOrZero for unchecked indices.
func (m *Matrix) Row(i int) []float64 {
	return m.dense.RawRowView(i)
}

// Shape formats the matrix dimensions as "rows × cols".
func (m *Matrix) Shape() string {
	return fmt.Sprintf("%d × %d", m.Rows(), m.Cols())
}
