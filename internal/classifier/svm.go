package classifier

import "math"

// binarySVM is an L2-regularized, squared-hinge linear SVM with a bias
// column, fitted by dual coordinate descent. Samples are visited in a fixed
// order so training is reproducible.
type binarySVM struct {
	w    []float64 // len dim+1, last slot is the bias
	bias int
}

type svmParams struct {
	c       float64
	tol     float64
	maxIter int
}

func trainBinarySVM(rows []vector, y []float64, dim int, p svmParams) *binarySVM {
	m := &binarySVM{w: make([]float64, dim+1), bias: dim}

	diag := 1 / (2 * p.c)
	alpha := make([]float64, len(rows))
	qii := make([]float64, len(rows))
	for i, row := range rows {
		qii[i] = row.sqNorm() + 1 + diag
	}

	for iter := 0; iter < p.maxIter; iter++ {
		maxPG, minPG := math.Inf(-1), math.Inf(1)

		for i, row := range rows {
			g := y[i]*m.decision(row) - 1 + diag*alpha[i]

			pg := g
			if alpha[i] == 0 && g > 0 {
				pg = 0
			}
			maxPG = math.Max(maxPG, pg)
			minPG = math.Min(minPG, pg)
			if pg == 0 {
				continue
			}

			old := alpha[i]
			alpha[i] = math.Max(old-g/qii[i], 0)
			delta := (alpha[i] - old) * y[i]
			if delta == 0 {
				continue
			}
			for _, f := range row {
				m.w[f.idx] += delta * f.val
			}
			m.w[m.bias] += delta
		}

		if maxPG-minPG < p.tol {
			break
		}
	}
	return m
}

func (m *binarySVM) decision(row vector) float64 {
	return row.dot(m.w) + m.w[m.bias]
}
