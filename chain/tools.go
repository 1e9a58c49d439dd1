package chain

import (
	"bytes"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sum calculates the sum of absolute values of matrix elements.
func Sum(m mat.Matrix) (s float64) {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			s += math.Abs(m.At(i, j))
		}
	}
	return
}

// MaxDiff returns the maximum absolute difference between elements of
// two matrices of the same shape.
func MaxDiff(a, b mat.Matrix) (d float64) {
	rows, cols := a.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			if abs := math.Abs(a.At(i, j) - b.At(i, j)); abs > d {
				d = abs
			}
		}
	}
	return
}

// SprintM returns a tab-separated matrix dump with state numbers.
func SprintM(m mat.Matrix) string {
	var b bytes.Buffer
	rows, cols := m.Dims()
	b.WriteString("\t")
	for j := 0; j < cols; j++ {
		fmt.Fprintf(&b, "%d\t", j)
	}
	b.WriteString("\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%d\t", i)
		for j := 0; j < cols; j++ {
			fmt.Fprintf(&b, "%0.4f\t", m.At(i, j))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// String returns a printable transition matrix.
func (c *Chain) String() string {
	return SprintM(c.M)
}

// PrintM prints a transition or power matrix.
func PrintM(m mat.Matrix) {
	fmt.Print(SprintM(m))
}
