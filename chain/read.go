package chain

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
)

// ReadMatrix reads a transition matrix from a reader. It should be
// just a list of numbers in a text format; their count must be a
// perfect square.
func ReadMatrix(rd io.Reader) (*Chain, error) {
	var data []float64

	scanner := bufio.NewScanner(rd)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		f, err := strconv.ParseFloat(scanner.Text(), 64)
		if err != nil {
			return nil, err
		}
		data = append(data, f)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	n := int(math.Sqrt(float64(len(data))))
	if len(data) == 0 || n*n != len(data) {
		return nil, fmt.Errorf("%d values in matrix file, must be a perfect square", len(data))
	}

	return New(n, data)
}
