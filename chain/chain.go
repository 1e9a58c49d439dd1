// Package chain implements row-stochastic transition matrices of
// finite Markov chains.
package chain

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// stochTol is the maximum allowed deviation of a row sum from 1.
const stochTol = 1e-9

// Chain is a Markov chain given by its transition matrix. M is
// row-stochastic: M.At(i, j) is the probability of moving from state
// i to state j in one step.
type Chain struct {
	// M is the transition matrix.
	M *mat.Dense
	// NStates is the number of states.
	NStates int
}

// New creates a Chain from row-major data of an n x n transition
// matrix. The matrix must be stochastic: every element in [0, 1] and
// every row summing to 1.
func New(n int, data []float64) (*Chain, error) {
	if n < 1 {
		return nil, errors.New("chain needs at least one state")
	}
	if len(data) != n*n {
		return nil, fmt.Errorf("expected %d elements for a %dx%d matrix, got %d", n*n, n, n, len(data))
	}
	m := mat.NewDense(n, n, data)
	for i := 0; i < n; i++ {
		rowSum := 0.0
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			if v < 0 || v > 1 {
				return nil, fmt.Errorf("element (%d, %d)=%v is not a probability", i, j, v)
			}
			rowSum += v
		}
		if math.Abs(rowSum-1) > stochTol {
			return nil, fmt.Errorf("row %d sums to %v, must be 1", i, rowSum)
		}
	}
	return &Chain{M: m, NStates: n}, nil
}

// GamblersRuin creates an absorbing birth-death chain on states
// 0..n-1. States 0 and n-1 are absorbing; an interior state moves up
// with probability p and down with probability 1-p.
func GamblersRuin(n int, p float64) (*Chain, error) {
	if n < 3 {
		return nil, errors.New("gambler's ruin needs at least three states")
	}
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("step-up probability %v outside (0, 1)", p)
	}
	m := mat.NewDense(n, n, nil)
	m.Set(0, 0, 1)
	m.Set(n-1, n-1, 1)
	for i := 1; i < n-1; i++ {
		m.Set(i, i-1, 1-p)
		m.Set(i, i+1, p)
	}
	return &Chain{M: m, NStates: n}, nil
}

// Uniform creates an n-state chain with all transition probabilities
// equal to 1/n.
func Uniform(n int) *Chain {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			m.Set(i, j, 1/float64(n))
		}
	}
	return &Chain{M: m, NStates: n}
}

// Absorbing returns indices of the absorbing states.
func (c *Chain) Absorbing() (states []int) {
	for i := 0; i < c.NStates; i++ {
		if c.M.At(i, i) == 1 {
			states = append(states, i)
		}
	}
	return
}

// RuinLimit returns the limit of M^k for k going to infinity for the
// chain created by GamblersRuin(n, p): row i has the probability of
// absorbing at state n-1 in the last column and the complement in the
// first one. For p=1/2 the top-absorption probability from state i is
// i/(n-1), otherwise it is (1-r^i)/(1-r^(n-1)) with r=(1-p)/p.
func RuinLimit(n int, p float64) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		var top float64
		if p == 0.5 {
			top = float64(i) / float64(n-1)
		} else {
			r := (1 - p) / p
			top = (1 - math.Pow(r, float64(i))) / (1 - math.Pow(r, float64(n-1)))
		}
		m.Set(i, 0, 1-top)
		m.Set(i, n-1, top)
	}
	return m
}
