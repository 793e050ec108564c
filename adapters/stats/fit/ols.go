package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"gocausal/domain/core"
)

// OLS fits y on the design by least squares. Coefficients solve the
// normal equations when X'X is invertible; a singular or badly
// conditioned cross-product falls back to an SVD pseudo-inverse so
// collinear designs still produce the minimum-norm solution.
func OLS(d *Design, y []float64) (*Model, error) {
	if err := d.validateResponse(y); err != nil {
		return nil, err
	}
	n, p := d.N(), d.P()
	X := d.Matrix()

	var xtx mat.Dense
	xtx.Mul(X.T(), X)

	xtxInv, err := invertOrPseudo(&xtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInsufficientData, err)
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), y...))
	var xty mat.VecDense
	xty.MulVec(X.T(), yVec)

	var beta mat.VecDense
	beta.MulVec(xtxInv, &xty)

	var fittedVec mat.VecDense
	fittedVec.MulVec(X, &beta)

	fitted := make([]float64, n)
	residuals := make([]float64, n)
	rss := 0.0
	meanY := 0.0
	for i := 0; i < n; i++ {
		fitted[i] = fittedVec.AtVec(i)
		residuals[i] = y[i] - fitted[i]
		rss += residuals[i] * residuals[i]
		meanY += y[i]
	}
	meanY /= float64(n)

	tss := 0.0
	for i := 0; i < n; i++ {
		dev := y[i] - meanY
		tss += dev * dev
	}

	df := n - p
	sigma2 := rss / float64(df)

	r2 := 0.0
	if tss > 0 {
		r2 = 1 - rss/tss
	}

	terms := make([]Coefficient, p)
	for j, name := range d.Terms() {
		est := beta.AtVec(j)
		variance := sigma2 * xtxInv.At(j, j)
		se := 0.0
		if variance > 0 {
			se = math.Sqrt(variance)
		}
		stat := math.NaN()
		if se > 0 {
			stat = est / se
		}
		terms[j] = Coefficient{
			Name:     name,
			Estimate: est,
			SE:       se,
			Stat:     stat,
			P:        twoSidedT(stat, df),
		}
	}

	return &Model{
		Kind:      KindOLS,
		Terms:     terms,
		N:         n,
		DF:        df,
		Sigma2:    sigma2,
		R2:        r2,
		fitted:    fitted,
		residuals: residuals,
	}, nil
}

// invertOrPseudo inverts a square cross-product matrix, falling back to
// the SVD pseudo-inverse (rank-truncated at 1e-12) when plain inversion
// reports singularity.
func invertOrPseudo(a *mat.Dense) (*mat.Dense, error) {
	var inv mat.Dense
	if err := inv.Inverse(a); err == nil {
		return &inv, nil
	}

	var svd mat.SVD
	if ok := svd.Factorize(a, mat.SVDFull); !ok {
		return nil, fmt.Errorf("singular matrix and SVD factorization failed")
	}
	rank := svd.Rank(1e-12)
	if rank == 0 {
		return nil, fmt.Errorf("matrix is numerically zero")
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	p := len(s)
	dInv := mat.NewDense(p, p, nil)
	for k := 0; k < rank; k++ {
		dInv.Set(k, k, 1/s[k])
	}

	var tmp, pinv mat.Dense
	tmp.Mul(&v, dInv)
	pinv.Mul(&tmp, u.T())
	return &pinv, nil
}
