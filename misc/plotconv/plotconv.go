// plotconv creates a plot of the convergence of M^k towards the
// absorption limit of a gambler's ruin chain.
package main

import (
	"flag"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"bitbucket.org/Davydov/chainpow/chain"
)

// identity returns an identity matrix.
func identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}

func main() {
	size := flag.Int("size", 6, "number of states")
	pUp := flag.Float64("p", 0.5, "step-up probability")
	maxK := flag.Int("maxk", 200, "maximum power")
	out := flag.String("out", "convergence.png", "output file")
	flag.Parse()

	c, err := chain.GamblersRuin(*size, *pUp)
	if err != nil {
		panic(err)
	}
	limit := chain.RuinLimit(*size, *pUp)

	p, err := plot.New()
	if err != nil {
		panic(err)
	}
	p.Title.Text = "Convergence of M^k"
	p.X.Label.Text = "k"
	p.Y.Label.Text = "log10 max |M^k - limit|"

	pts := make(plotter.XYs, 0, *maxK)
	pk := identity(c.NStates)
	for k := 1; k <= *maxK; k++ {
		pk.Mul(pk, c.M)
		d := chain.MaxDiff(pk, limit)
		if d == 0 {
			break
		}
		pts = append(pts, plotter.XY{X: float64(k), Y: math.Log10(d)})
	}
	fmt.Printf("final difference: %g after %d powers\n", chain.MaxDiff(pk, limit), len(pts))

	err = plotutil.AddLinePoints(p, "error", pts)
	if err != nil {
		panic(err)
	}

	if err := p.Save(4*vg.Inch, 4*vg.Inch, *out); err != nil {
		panic(err)
	}
}
