package rmp

import (
	"math"

	"cqfsim/internal/apperror"
	"gonum.org/v1/gonum/mat"
)

const (
	simplexEps     = 1e-9
	simplexMaxIter = 2000
)

// solveBoundedLP minimizes c·x subject to Ax <= b, 0 <= x_j <= upper[j],
// via the primal simplex method adapted for upper-bounded variables: a
// nonbasic variable sitting at its upper bound is represented internally
// by the substitution y_j = upper[j] - x_j, tracked per-column in sign,
// so the tableau only ever reasons about variables increasing from zero.
// One slack variable (unbounded above) is appended per row.
//
// It returns the optimal x (length n) and the reduced cost of each
// slack column (length m), from which the caller derives constraint
// duals.
func solveBoundedLP(c []float64, a [][]float64, b []float64, upper []float64) (x []float64, slackReducedCost []float64, err error) {
	n := len(c)
	m := len(b)
	total := n + m

	width := make([]float64, total)
	copy(width, upper)
	for j := n; j < total; j++ {
		width[j] = math.Inf(1)
	}

	tab := mat.NewDense(m+1, total+1, nil)
	for j := 0; j < n; j++ {
		tab.Set(0, j, c[j])
	}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			tab.Set(i+1, j, a[i][j])
		}
		tab.Set(i+1, n+i, 1)
		tab.Set(i+1, total, b[i])
	}

	basis := make([]int, m)
	basicRow := make([]int, total)
	flipped := make([]bool, total)
	for j := range basicRow {
		basicRow[j] = -1
	}
	for i := 0; i < m; i++ {
		basis[i] = n + i
		basicRow[n+i] = i
	}

	for iter := 0; iter < simplexMaxIter; iter++ {
		enter := -1
		best := -simplexEps
		for j := 0; j < total; j++ {
			if basicRow[j] != -1 || width[j] <= simplexEps {
				continue
			}
			rc := tab.At(0, j)
			if rc < best-simplexEps {
				best = rc
				enter = j
			}
		}
		if enter == -1 {
			break
		}

		ownLimit := width[enter]
		rowLimit := math.Inf(1)
		leaveRow := -1
		hitZero := true

		for i := 0; i < m; i++ {
			coef := tab.At(i+1, enter)
			switch {
			case coef > simplexEps:
				limit := tab.At(i+1, total) / coef
				if limit < rowLimit-simplexEps || (math.Abs(limit-rowLimit) <= simplexEps && (leaveRow == -1 || basis[i] < basis[leaveRow])) {
					rowLimit, leaveRow, hitZero = limit, i, true
				}
			case coef < -simplexEps:
				w := width[basis[i]]
				if !math.IsInf(w, 1) {
					limit := (w - tab.At(i+1, total)) / (-coef)
					if limit < rowLimit-simplexEps || (math.Abs(limit-rowLimit) <= simplexEps && (leaveRow == -1 || basis[i] < basis[leaveRow])) {
						rowLimit, leaveRow, hitZero = limit, i, false
					}
				}
			}
		}

		boundFlip := ownLimit <= rowLimit+simplexEps
		t := math.Min(ownLimit, rowLimit)
		if math.IsInf(t, 1) {
			return nil, nil, apperror.ErrIterationLimit
		}

		for i := 0; i <= m; i++ {
			tab.Set(i, total, tab.At(i, total)-tab.At(i, enter)*t)
		}

		if boundFlip {
			// Entering variable hits its own opposite bound without
			// displacing any basic variable: flip its representation
			// and keep it nonbasic.
			for i := 0; i <= m; i++ {
				tab.Set(i, enter, -tab.At(i, enter))
			}
			flipped[enter] = !flipped[enter]
			continue
		}

		leaving := basis[leaveRow]
		if !hitZero {
			for i := 0; i <= m; i++ {
				tab.Set(i, leaving, -tab.At(i, leaving))
			}
			flipped[leaving] = !flipped[leaving]
		}

		pivot := tab.At(leaveRow+1, enter)
		pivotRow := mat.Row(nil, leaveRow+1, tab)
		for j := range pivotRow {
			pivotRow[j] /= pivot
		}
		tab.SetRow(leaveRow+1, pivotRow)

		for i := 0; i <= m; i++ {
			if i == leaveRow+1 {
				continue
			}
			factor := tab.At(i, enter)
			if math.Abs(factor) <= simplexEps {
				continue
			}
			for j := 0; j <= total; j++ {
				tab.Set(i, j, tab.At(i, j)-factor*pivotRow[j])
			}
		}

		basicRow[leaving] = -1
		basis[leaveRow] = enter
		basicRow[enter] = leaveRow
	}

	x = make([]float64, n)
	for j := 0; j < n; j++ {
		tabVal := 0.0
		if r := basicRow[j]; r != -1 {
			tabVal = tab.At(r+1, total)
		}
		if flipped[j] {
			x[j] = width[j] - tabVal
		} else {
			x[j] = tabVal
		}
	}

	slackReducedCost = make([]float64, m)
	for i := 0; i < m; i++ {
		slackReducedCost[i] = tab.At(0, n+i)
	}

	return x, slackReducedCost, nil
}
