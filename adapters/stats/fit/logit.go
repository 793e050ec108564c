package fit

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"gocausal/domain/core"
)

const (
	logitMaxIterations = 50
	logitTolerance     = 1e-8
	// probClamp keeps fitted probabilities off the boundary so the IRLS
	// weights stay positive under near-separation.
	probClamp = 1e-10
)

// Logit fits a logistic regression of a binary response on the design
// via iteratively reweighted least squares. Fitted values are the
// estimated probabilities; inference columns use the Wald z reference.
func Logit(d *Design, y []float64) (*Model, error) {
	if err := d.validateResponse(y); err != nil {
		return nil, err
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, core.NewInvalidInputError("logit response must be 0/1, got %g at row %d", v, i)
		}
	}

	n, p := d.N(), d.P()
	X := d.Matrix()

	beta := mat.NewVecDense(p, nil)
	eta := make([]float64, n)
	mu := make([]float64, n)
	w := make([]float64, n)
	z := make([]float64, n)

	var xtwxInv *mat.Dense
	converged := false
	iterations := 0

	for iter := 1; iter <= logitMaxIterations; iter++ {
		iterations = iter

		var etaVec mat.VecDense
		etaVec.MulVec(X, beta)
		for i := 0; i < n; i++ {
			eta[i] = etaVec.AtVec(i)
			mu[i] = clampProb(1 / (1 + math.Exp(-eta[i])))
			w[i] = mu[i] * (1 - mu[i])
			z[i] = eta[i] + (y[i]-mu[i])/w[i]
		}

		// X'WX and X'Wz with W diagonal
		xtwx := mat.NewDense(p, p, nil)
		xtwz := mat.NewVecDense(p, nil)
		for j := 0; j < p; j++ {
			for k := j; k < p; k++ {
				sum := 0.0
				for i := 0; i < n; i++ {
					sum += X.At(i, j) * w[i] * X.At(i, k)
				}
				xtwx.Set(j, k, sum)
				xtwx.Set(k, j, sum)
			}
			sum := 0.0
			for i := 0; i < n; i++ {
				sum += X.At(i, j) * w[i] * z[i]
			}
			xtwz.SetVec(j, sum)
		}

		inv, err := invertOrPseudo(xtwx)
		if err != nil {
			return nil, fmt.Errorf("%w: weighted cross-product: %v", core.ErrInsufficientData, err)
		}
		xtwxInv = inv

		var next mat.VecDense
		next.MulVec(xtwxInv, xtwz)

		maxDelta := 0.0
		for j := 0; j < p; j++ {
			delta := math.Abs(next.AtVec(j) - beta.AtVec(j))
			if delta > maxDelta {
				maxDelta = delta
			}
		}
		beta.CopyVec(&next)

		if maxDelta < logitTolerance {
			converged = true
			break
		}
	}

	if !converged {
		return nil, fmt.Errorf("%w: logit did not converge in %d iterations",
			core.ErrInsufficientData, logitMaxIterations)
	}

	// final fitted probabilities and deviance at the converged beta
	var etaVec mat.VecDense
	etaVec.MulVec(X, beta)
	fitted := make([]float64, n)
	residuals := make([]float64, n)
	deviance := 0.0
	for i := 0; i < n; i++ {
		pHat := clampProb(1 / (1 + math.Exp(-etaVec.AtVec(i))))
		fitted[i] = pHat
		residuals[i] = y[i] - pHat
		if y[i] == 1 {
			deviance += -2 * math.Log(pHat)
		} else {
			deviance += -2 * math.Log(1-pHat)
		}
	}

	df := n - p
	terms := make([]Coefficient, p)
	for j, name := range d.Terms() {
		est := beta.AtVec(j)
		variance := xtwxInv.At(j, j)
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
			P:        twoSidedZ(stat),
		}
	}

	return &Model{
		Kind:       KindLogit,
		Terms:      terms,
		N:          n,
		DF:         df,
		Deviance:   deviance,
		Iterations: iterations,
		fitted:     fitted,
		residuals:  residuals,
	}, nil
}

func clampProb(p float64) float64 {
	if p < probClamp {
		return probClamp
	}
	if p > 1-probClamp {
		return 1 - probClamp
	}
	return p
}
