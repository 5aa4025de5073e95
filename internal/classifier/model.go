package classifier

import (
	"errors"
	"fmt"
	"sort"
)

// TrainConfig holds the vectorizer and SVM hyperparameters.
type TrainConfig struct {
	MinDF   int
	MaxDF   float64
	C       float64
	Tol     float64
	MaxIter int
}

// DefaultTrainConfig matches a unigram+bigram TF-IDF and a LinearSVC-style
// squared-hinge model.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		MinDF:   1,
		MaxDF:   0.9,
		C:       1.0,
		Tol:     0.1,
		MaxIter: 1000,
	}
}

var ErrEmptyCorpus = errors.New("training corpus is empty")

// Model is a fitted text classifier. It is immutable after Train returns and
// safe for concurrent use.
type Model struct {
	vec     *Vectorizer
	classes []string
	// One model per class, or a single model scoring classes[1] against
	// classes[0] when there are exactly two.
	svms []*binarySVM
}

// Train fits a Model on parallel texts and labels.
func Train(texts, labels []string, cfg TrainConfig) (*Model, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(texts) != len(labels) {
		return nil, fmt.Errorf("train: %d texts but %d labels", len(texts), len(labels))
	}

	vec := NewVectorizer(cfg.MinDF, cfg.MaxDF)
	vec.Fit(texts)
	if vec.Dim() == 0 {
		return nil, fmt.Errorf("train: no features survived vocabulary pruning")
	}

	rows := make([]vector, len(texts))
	for i, text := range texts {
		rows[i] = vec.Transform(text)
	}

	classSet := make(map[string]struct{})
	for _, l := range labels {
		classSet[l] = struct{}{}
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	params := svmParams{c: cfg.C, tol: cfg.Tol, maxIter: cfg.MaxIter}
	m := &Model{vec: vec, classes: classes}

	switch len(classes) {
	case 1:
	case 2:
		m.svms = []*binarySVM{trainBinarySVM(rows, targets(labels, classes[1]), vec.Dim(), params)}
	default:
		m.svms = make([]*binarySVM, len(classes))
		for k, class := range classes {
			m.svms[k] = trainBinarySVM(rows, targets(labels, class), vec.Dim(), params)
		}
	}
	return m, nil
}

func targets(labels []string, positive string) []float64 {
	y := make([]float64, len(labels))
	for i, l := range labels {
		if l == positive {
			y[i] = 1
		} else {
			y[i] = -1
		}
	}
	return y
}

// Classes returns the trained labels in sorted order.
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Scores returns one decision score per trained class. The two-class case,
// which has a single signed score s, is reported as -s for the first class
// and s for the second.
func (m *Model) Scores(text string) map[string]float64 {
	row := m.vec.Transform(text)
	scores := make(map[string]float64, len(m.classes))

	switch len(m.classes) {
	case 1:
		scores[m.classes[0]] = 0
	case 2:
		s := m.svms[0].decision(row)
		scores[m.classes[0]] = -s
		scores[m.classes[1]] = s
	default:
		for k, class := range m.classes {
			scores[class] = m.svms[k].decision(row)
		}
	}
	return scores
}

// Predict returns the highest-scoring class; ties go to the class that sorts
// first.
func (m *Model) Predict(text string) string {
	scores := m.Scores(text)
	best := m.classes[0]
	for _, class := range m.classes[1:] {
		if scores[class] > scores[best] {
			best = class
		}
	}
	return best
}
