package ematrix

import (
	"math"
	"testing"

	"github.com/op/go-logging"
	"gonum.org/v1/gonum/mat"

	"bitbucket.org/Davydov/chainpow/chain"
)

const (
	// smallDiff is a threshold for comparing matrix elements.
	smallDiff = 1e-8
	// sumDiff is a looser threshold for the power-sum comparison;
	// the direct accumulation route is expected to drift.
	sumDiff = 1e-6
)

func init() {
	// disable logging for tests
	logging.SetLevel(logging.WARNING, "ematrix")
}

func ruin(tst testing.TB, n int, p float64) *chain.Chain {
	c, err := chain.GamblersRuin(n, p)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	return c
}

func TestReconstruct(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	r, err := e.Reconstruct(nil)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	d := chain.MaxDiff(c.M, r)
	tst.Log("reconstruction diff=", d)
	if d > smallDiff {
		tst.Error("Reconstruction differs from M by", d)
	}
}

func TestPowerMatchesDirect(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	cD := mat.NewDense(c.NStates, c.NStates, nil)
	dst := mat.NewDense(c.NStates, c.NStates, nil)
	for _, n := range []uint64{0, 1, 2, 3, 5, 10, 31, 64} {
		pe, err := e.Power(cD, n)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		pd := Pow(dst, c.M, n)
		d := chain.MaxDiff(pe, pd)
		tst.Logf("n=%d diff=%g", n, d)
		if d > smallDiff {
			tst.Errorf("Methods differ by %g for n=%d", d, n)
		}
	}
}

func TestPowerMatchesDirectBiased(tst *testing.T) {
	c := ruin(tst, 8, 0.3)
	e := NewEMatrix(c.M)
	for _, n := range []uint64{2, 17, 100} {
		pe, err := e.Power(nil, n)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		pd := Pow(nil, c.M, n)
		d := chain.MaxDiff(pe, pd)
		tst.Logf("n=%d diff=%g", n, d)
		if d > smallDiff {
			tst.Errorf("Methods differ by %g for n=%d", d, n)
		}
	}
}

func TestPowerConvergence(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	p, err := e.Power(nil, 1<<40)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	limit := chain.RuinLimit(6, 0.5)
	d := chain.MaxDiff(p, limit)
	tst.Log("diff from absorption limit=", d)
	if d > smallDiff {
		tst.Error("M^n hasn't converged to the absorption limit, diff", d)
	}

	// The direct route gets there too, in 40 multiplications.
	pd := Pow(nil, c.M, 1<<40)
	d = chain.MaxDiff(pd, limit)
	tst.Log("direct diff from absorption limit=", d)
	if d > smallDiff {
		tst.Error("Direct M^n hasn't converged to the absorption limit, diff", d)
	}
}

func TestPowerSum(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	for _, n := range []uint64{0, 1, 2, 10, 50} {
		se, err := e.PowerSum(nil, n)
		if err != nil {
			tst.Fatal("Error: ", err)
		}
		sd := PowSum(nil, c.M, n)
		d := chain.MaxDiff(se, sd)
		tst.Logf("n=%d diff=%g", n, d)
		if d > sumDiff {
			tst.Errorf("Power sums differ by %g for n=%d", d, n)
		}
	}
}

func TestSLEM(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	slem, err := e.SLEM()
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	// Interior eigenvalues of the fair six-state chain are
	// cos(k*pi/5); the largest is cos(pi/5).
	ref := math.Cos(math.Pi / 5)
	tst.Log("slem=", slem, ", ref=", ref)
	if math.Abs(slem-ref) > smallDiff {
		tst.Error("Expected SLEM", ref, ", got", slem)
	}
}

func TestUniformIdempotent(tst *testing.T) {
	c := chain.Uniform(4)
	e := NewEMatrix(c.M)
	p, err := e.Power(nil, 7)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	d := chain.MaxDiff(p, c.M)
	tst.Log("diff=", d)
	if d > smallDiff {
		tst.Error("Uniform chain power must equal the chain itself, diff", d)
	}
}

func TestComplexSpectrum(tst *testing.T) {
	// A cyclic chain has complex eigenvalues; the eigenbasis route
	// must refuse it.
	m := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		0, 0, 1,
		1, 0, 0,
	})
	e := NewEMatrix(m)
	if err := e.Eigen(); err == nil {
		tst.Error("Expected an error for a complex spectrum")
	}
}

func TestSetInvalidates(tst *testing.T) {
	c := ruin(tst, 6, 0.5)
	e := NewEMatrix(c.M)
	if err := e.Eigen(); err != nil {
		tst.Fatal("Error: ", err)
	}
	c2 := chain.Uniform(6)
	e.Set(c2.M)
	p, err := e.Power(nil, 3)
	if err != nil {
		tst.Fatal("Error: ", err)
	}
	if d := chain.MaxDiff(p, c2.M); d > smallDiff {
		tst.Error("Stale decomposition after Set, diff", d)
	}
}

func BenchmarkPowerDirect(b *testing.B) {
	c := ruin(b, 6, 0.5)
	dst := mat.NewDense(c.NStates, c.NStates, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Pow(dst, c.M, 1<<40)
	}
}

func BenchmarkPowerEigen(b *testing.B) {
	c := ruin(b, 6, 0.5)
	cD := mat.NewDense(c.NStates, c.NStates, nil)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e := NewEMatrix(c.M)
		e.Power(cD, 1<<40)
	}
}

func BenchmarkPowerEigenCached(b *testing.B) {
	c := ruin(b, 6, 0.5)
	cD := mat.NewDense(c.NStates, c.NStates, nil)
	e := NewEMatrix(c.M)
	e.Eigen()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Power(cD, 1<<40)
	}
}
