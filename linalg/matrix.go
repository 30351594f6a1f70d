package linalg

import (
	"fmt"
	"math/rand"
)

// Matrix is a dense row-major weight matrix. Projections interpret rows as
// sender elements and columns as receiver elements.
type Matrix [][]float64

// Rows returns the number of rows.
func (m Matrix) Rows() int {
	return len(m)
}

// Cols returns the number of columns, or 0 for an empty matrix.
func (m Matrix) Cols() int {
	if len(m) == 0 {
		return 0
	}
	return len(m[0])
}

// Validate checks that the matrix is non-empty and not ragged.
func (m Matrix) Validate() error {
	if len(m) == 0 {
		return fmt.Errorf("linalg: matrix has no rows")
	}
	cols := len(m[0])
	if cols == 0 {
		return fmt.Errorf("linalg: matrix has no columns")
	}
	for i, row := range m {
		if len(row) != cols {
			return fmt.Errorf("linalg: matrix is ragged: row %d has %d columns, expected %d", i, len(row), cols)
		}
	}
	return nil
}

// CloneMatrix returns a deep copy of m.
func CloneMatrix(m Matrix) Matrix {
	out := make(Matrix, len(m))
	for i, row := range m {
		out[i] = Clone(row)
	}
	return out
}

// AddMatrix adds b into a elementwise, in place.
func AddMatrix(a, b Matrix) error {
	if a.Rows() != b.Rows() || a.Cols() != b.Cols() {
		return fmt.Errorf("linalg: matrix add shape mismatch: %dx%d vs %dx%d",
			a.Rows(), a.Cols(), b.Rows(), b.Cols())
	}
	for i := range a {
		for j := range a[i] {
			a[i][j] += b[i][j]
		}
	}
	return nil
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := Constant(n, n, 0)
	for i := 0; i < n; i++ {
		m[i][i] = 1
	}
	return m
}

// FullConnectivity returns an r x c matrix of ones, connecting every sender
// element to every receiver element with unit weight.
func FullConnectivity(r, c int) Matrix {
	return Constant(r, c, 1)
}

// Hollow returns an n x n matrix of ones with a zero diagonal.
func Hollow(n int) Matrix {
	m := Constant(n, n, 1)
	for i := 0; i < n; i++ {
		m[i][i] = 0
	}
	return m
}

// Constant returns an r x c matrix with every entry set to v.
func Constant(r, c int, v float64) Matrix {
	m := make(Matrix, r)
	for i := range m {
		m[i] = Fill(c, v)
	}
	return m
}

// Random returns an r x c matrix of uniform [0,1) weights drawn from rng.
func Random(r, c int, rng *rand.Rand) Matrix {
	m := make(Matrix, r)
	for i := range m {
		m[i] = make(Vector, c)
		for j := range m[i] {
			m[i][j] = rng.Float64()
		}
	}
	return m
}

// AutoHetero returns an n x n matrix with auto on the diagonal and hetero
// everywhere else. Recurrent mechanisms use it for self-connection weights.
func AutoHetero(n int, auto, hetero float64) Matrix {
	m := Constant(n, n, hetero)
	for i := 0; i < n; i++ {
		m[i][i] = auto
	}
	return m
}

// Matrix specification keywords accepted by FromSpec and the modelfile schema.
const (
	SpecIdentity = "identity"
	SpecFull     = "full"
	SpecHollow   = "hollow"
	SpecRandom   = "random"
	SpecZeros    = "zeros"
)

// FromSpec resolves a matrix keyword to a rows x cols matrix. Identity and
// hollow require rows == cols.
func FromSpec(spec string, rows, cols int, rng *rand.Rand) (Matrix, error) {
	switch spec {
	case SpecIdentity:
		if rows != cols {
			return nil, fmt.Errorf("linalg: identity matrix requires square shape, got %dx%d", rows, cols)
		}
		return Identity(rows), nil
	case SpecHollow:
		if rows != cols {
			return nil, fmt.Errorf("linalg: hollow matrix requires square shape, got %dx%d", rows, cols)
		}
		return Hollow(rows), nil
	case SpecFull:
		return FullConnectivity(rows, cols), nil
	case SpecRandom:
		if rng == nil {
			rng = rand.New(rand.NewSource(0))
		}
		return Random(rows, cols, rng), nil
	case SpecZeros:
		return Constant(rows, cols, 0), nil
	default:
		return nil, fmt.Errorf("linalg: unknown matrix spec %q", spec)
	}
}
