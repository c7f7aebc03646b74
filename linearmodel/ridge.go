package linearmodel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// RidgeOptions represents input options to run a ridge regression. Each feature j is
// penalized by Lambda*Penalties[j] so groups of features can be shrunk by different
// amounts. The intercept is never penalized.
type RidgeOptions struct {
	// Lambda is the overall regularization strength. A zero value with no penalties
	// is equivalent to ordinary least squares.
	Lambda float64

	// Penalties optionally scales the regularization per feature column. Nil means every
	// feature receives a penalty of 1.
	Penalties []float64

	// FitIntercept centers the training data and fits an unpenalized intercept
	FitIntercept bool
}

// Validate runs basic validation on ridge options
func (r *RidgeOptions) Validate() (*RidgeOptions, error) {
	if r == nil {
		r = NewDefaultRidgeOptions()
	}
	if r.Lambda < 0 {
		return nil, fmt.Errorf("lambda of %.3f, %w", r.Lambda, ErrNegativePenalty)
	}
	for i, p := range r.Penalties {
		if p < 0 || math.IsNaN(p) {
			return nil, fmt.Errorf("penalty at feature %d is %.3f, %w", i, p, ErrNegativePenalty)
		}
	}
	return r, nil
}

// NewDefaultRidgeOptions returns a default set of ridge regression options
func NewDefaultRidgeOptions() *RidgeOptions {
	return &RidgeOptions{
		Lambda:       1.0,
		FitIntercept: true,
	}
}

// RidgeRegression solves the penalized normal equations with a Cholesky factorization. When
// no penalty applies it falls back to a QR least squares solve.
type RidgeRegression struct {
	opt       *RidgeOptions
	coef      []float64
	intercept float64
	trained   bool
}

// NewRidgeRegression initializes a ridge regression model ready for fitting
func NewRidgeRegression(opt *RidgeOptions) (*RidgeRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &RidgeRegression{
		opt: opt,
	}, nil
}

// Fit the model according to the given training data. x has m observations by n features
// and y is an m by 1 target.
func (r *RidgeRegression) Fit(x, y mat.Matrix) error {
	if r.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	penalties := r.opt.Penalties
	if penalties == nil {
		penalties = make([]float64, n)
		floats.AddConst(1.0, penalties)
	}
	if len(penalties) != n {
		return fmt.Errorf("got %d penalties for %d features, %w", len(penalties), n, ErrPenaltyLenMismatch)
	}

	xc := mat.DenseCopyOf(x)
	yc := mat.NewVecDense(m, mat.Col(nil, 0, y))

	var xMean []float64
	var yMean float64
	if r.opt.FitIntercept {
		xMean = make([]float64, n)
		for j := 0; j < n; j++ {
			col := mat.Col(nil, j, xc)
			xMean[j] = stat.Mean(col, nil)
			floats.AddConst(-xMean[j], col)
			xc.SetCol(j, col)
		}
		yMean = stat.Mean(yc.RawVector().Data, nil)
		floats.AddConst(-yMean, yc.RawVector().Data)
	}

	var w mat.VecDense
	if r.opt.Lambda*floats.Sum(penalties) == 0 {
		if err := solveQR(&w, xc, yc); err != nil {
			return err
		}
	} else {
		if err := solveCholesky(&w, xc, yc, r.opt.Lambda, penalties); err != nil {
			return err
		}
	}

	r.coef = make([]float64, n)
	for j := 0; j < n; j++ {
		r.coef[j] = w.AtVec(j)
	}

	r.intercept = 0.0
	if r.opt.FitIntercept {
		r.intercept = yMean - floats.Dot(xMean, r.coef)
	}
	r.trained = true
	return nil
}

func solveQR(dst *mat.VecDense, x *mat.Dense, y *mat.VecDense) error {
	m, n := x.Dims()
	if m < n {
		return fmt.Errorf("%d observations for %d features, %w", m, n, ErrSingularMatrix)
	}
	var qr mat.QR
	qr.Factorize(x)
	if err := qr.SolveVecTo(dst, false, y); err != nil {
		return fmt.Errorf("unable to solve least squares, %w: %w", ErrSingularMatrix, err)
	}
	return nil
}

func solveCholesky(dst *mat.VecDense, x *mat.Dense, y *mat.VecDense, lambda float64, penalties []float64) error {
	_, n := x.Dims()

	xtx := mat.NewSymDense(n, nil)
	xtx.SymOuterK(1.0, x.T())
	for j := 0; j < n; j++ {
		xtx.SetSym(j, j, xtx.At(j, j)+lambda*penalties[j])
	}

	var xty mat.VecDense
	xty.MulVec(x.T(), y)

	var chol mat.Cholesky
	if ok := chol.Factorize(xtx); !ok {
		return fmt.Errorf("normal equations are not positive definite, %w", ErrSingularMatrix)
	}
	if err := chol.SolveVecTo(dst, &xty); err != nil {
		return fmt.Errorf("unable to solve normal equations, %w: %w", ErrSingularMatrix, err)
	}
	return nil
}

// Predict using the ridge model
func (r *RidgeRegression) Predict(x mat.Matrix) ([]float64, error) {
	if r.opt == nil {
		return nil, ErrNoOptions
	}
	if !r.trained {
		return nil, ErrUntrainedModel
	}
	if x == nil {
		return nil, ErrNoDesignMatrix
	}

	m, n := x.Dims()
	if n != len(r.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(r.coef), ErrFeatureLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, r.Coef()))

	out := make([]float64, m)
	for i := 0; i < m; i++ {
		out[i] = res.AtVec(i) + r.intercept
	}
	return out, nil
}

// Score computes the coefficient of determination of the prediction
func (r *RidgeRegression) Score(x, y mat.Matrix) (float64, error) {
	if r.opt == nil {
		return 0.0, ErrNoOptions
	}
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()

	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := r.Predict(x)
	if err != nil {
		return 0.0, err
	}

	ySlice := mat.Col(nil, 0, y)

	return stat.RSquaredFrom(res, ySlice, nil), nil
}

// Intercept returns the computed intercept if FitIntercept is set to true. Defaults to 0.0 if not set.
func (r *RidgeRegression) Intercept() float64 {
	return r.intercept
}

// Coef returns a slice of the trained coefficients in the same order of the training feature Matrix by column.
func (r *RidgeRegression) Coef() []float64 {
	c := make([]float64, len(r.coef))
	copy(c, r.coef)
	return c
}
