// Package classifier predicts an article's subgenre with a linear model
// trained once on the seed corpus, constrained to the subgenres of the
// article's main genre.
package classifier

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/deusflow/newsbrief/internal/taxonomy"
)

var ErrNotTrained = errors.New("subgenre classifier used before training")

// Classifier owns the lazily trained Model. The first caller trains it under
// a mutex; every later call is a lock-free read of the immutable Model.
type Classifier struct {
	tax  *taxonomy.Taxonomy
	seed []taxonomy.Example
	cfg  TrainConfig

	mu        sync.Mutex
	model     atomic.Pointer[Model]
	trainings atomic.Int32
}

// New creates an untrained Classifier over the given taxonomy and seed corpus.
func New(tax *taxonomy.Taxonomy, seed []taxonomy.Example, cfg TrainConfig) *Classifier {
	s := make([]taxonomy.Example, len(seed))
	copy(s, seed)
	return &Classifier{tax: tax, seed: s, cfg: cfg}
}

// EnsureTrained trains the model if no model exists yet. Concurrent callers
// block until the single training finishes. Safe to call repeatedly.
func (c *Classifier) EnsureTrained() error {
	if c.model.Load() != nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.model.Load() != nil {
		return nil
	}

	start := time.Now()
	texts := make([]string, len(c.seed))
	labels := make([]string, len(c.seed))
	for i, ex := range c.seed {
		texts[i] = ex.Text
		labels[i] = ex.Label
	}

	m, err := Train(texts, labels, c.cfg)
	if err != nil {
		return fmt.Errorf("train subgenre classifier: %w", err)
	}
	c.trainings.Add(1)
	c.model.Store(m)

	slog.Info("subgenre classifier trained",
		"examples", len(texts),
		"classes", len(m.classes),
		"features", m.vec.Dim(),
		"duration", time.Since(start))
	return nil
}

// Model returns the trained model, or nil before training.
func (c *Classifier) Model() *Model {
	return c.model.Load()
}

// TrainCount reports how many times a model was fitted (0 or 1).
func (c *Classifier) TrainCount() int {
	return int(c.trainings.Load())
}

// mustModel is the guard for inference paths, which always train first.
func (c *Classifier) mustModel() *Model {
	m := c.model.Load()
	if m == nil {
		panic(fmt.Errorf("classifier: inference without a model: %w", ErrNotTrained))
	}
	return m
}

// Predict returns the best label across every trained class.
func (c *Classifier) Predict(text string) (string, error) {
	if err := c.EnsureTrained(); err != nil {
		return "", err
	}
	return c.mustModel().Predict(text), nil
}

// PredictSubgenre returns the highest-scoring subgenre of mainGenre. When
// mainGenre has no subgenres in the taxonomy, the unconstrained prediction is
// returned. Subgenres the model never saw score -Inf; among equal scores the
// one listed first in the taxonomy wins.
func (c *Classifier) PredictSubgenre(text, mainGenre string) (string, error) {
	if err := c.EnsureTrained(); err != nil {
		return "", err
	}
	m := c.mustModel()

	allowed := c.tax.Subgenres(mainGenre)
	if len(allowed) == 0 {
		slog.Debug("main genre has no subgenres, using global prediction", "main_genre", mainGenre)
		return m.Predict(text), nil
	}

	scores := m.Scores(text)
	score := func(sub string) float64 {
		if s, ok := scores[sub]; ok {
			return s
		}
		return math.Inf(-1)
	}

	best := allowed[0]
	bestScore := score(best)
	for _, sub := range allowed[1:] {
		if s := score(sub); s > bestScore {
			best, bestScore = sub, s
		}
	}
	return best, nil
}
