// Package processor is the single entry point for turning article text and
// a main genre into a SummaryResult. Build one Processor at startup and pass
// it to whatever needs it; it is safe for concurrent use.
package processor

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/deusflow/newsbrief/internal/classifier"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/summarizer"
	"github.com/deusflow/newsbrief/internal/taxonomy"
)

// UnknownSubgenre is reported for empty articles, which are not classified.
const UnknownSubgenre = "Unknown"

var ErrInvalidInput = errors.New("invalid input")

// SummaryResult is the outcome for one article.
type SummaryResult struct {
	Summary   string `json:"summary"`
	MainGenre string `json:"main_genre"`
	Subgenre  string `json:"subgenre"`
}

// Processor combines the summarizer and the subgenre classifier over one
// taxonomy.
type Processor struct {
	taxonomy   *taxonomy.Taxonomy
	summarizer *summarizer.Summarizer
	classifier *classifier.Classifier
	metrics    *metrics.Metrics
	trained    atomic.Bool
}

// New builds a Processor. The classifier is trained on first use unless
// WithEagerTraining is given.
func New(opts ...Option) (*Processor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ds := o.dataset
	if ds == nil {
		var err error
		if o.dataPath != "" {
			ds, err = taxonomy.LoadFile(o.dataPath)
		} else {
			ds, err = taxonomy.Default()
		}
		if err != nil {
			return nil, fmt.Errorf("processor: %w", err)
		}
	}

	m := o.metrics
	if m == nil {
		m = metrics.New()
	}

	p := &Processor{
		taxonomy:   ds.Taxonomy,
		summarizer: summarizer.New(summarizer.WithMinWords(o.minWords), summarizer.WithMaxWords(o.maxWords)),
		classifier: classifier.New(ds.Taxonomy, ds.Seed, o.trainCfg),
		metrics:    m,
	}

	if o.eager {
		if err := p.Train(); err != nil {
			return nil, fmt.Errorf("processor: %w", err)
		}
	}
	return p, nil
}

// Train fits the classifier if it has not been fitted yet.
func (p *Processor) Train() error {
	if err := p.classifier.EnsureTrained(); err != nil {
		return err
	}
	if p.trained.CompareAndSwap(false, true) {
		p.metrics.IncrementClassifierTrainings()
	}
	return nil
}

// Taxonomy exposes the genre taxonomy the processor classifies against.
func (p *Processor) Taxonomy() *taxonomy.Taxonomy {
	return p.taxonomy
}

// Classifier exposes the underlying classifier.
func (p *Processor) Classifier() *classifier.Classifier {
	return p.classifier
}

// Summarize returns the extractive summary of text.
func (p *Processor) Summarize(text string) string {
	return p.summarizer.Summarize(text)
}

// PredictSubgenre returns the best subgenre of mainGenre for text.
func (p *Processor) PredictSubgenre(text, mainGenre string) (string, error) {
	if err := p.Train(); err != nil {
		return "", err
	}
	return p.classifier.PredictSubgenre(text, mainGenre)
}

// Produce summarizes and classifies one article. A blank main genre is
// rejected with ErrInvalidInput. A blank article yields an empty summary and
// UnknownSubgenre without doing any work.
func (p *Processor) Produce(text, mainGenre string) (SummaryResult, error) {
	if strings.TrimSpace(mainGenre) == "" {
		p.metrics.IncrementInvalidRequests()
		return SummaryResult{}, fmt.Errorf("main genre must be a non-empty string: %w", ErrInvalidInput)
	}

	if strings.TrimSpace(text) == "" {
		p.metrics.IncrementEmptyArticles()
		return SummaryResult{MainGenre: mainGenre, Subgenre: UnknownSubgenre}, nil
	}

	start := time.Now()
	defer func() {
		p.metrics.RecordProcessingTime(time.Since(start))
	}()

	if !p.taxonomy.HasMainGenre(mainGenre) {
		p.metrics.IncrementUnknownGenres()
	}

	summary := p.summarizer.Summarize(text)
	subgenre, err := p.PredictSubgenre(text, mainGenre)
	if err != nil {
		return SummaryResult{}, fmt.Errorf("predict subgenre: %w", err)
	}

	p.metrics.IncrementArticlesProcessed()
	return SummaryResult{
		Summary:   summary,
		MainGenre: mainGenre,
		Subgenre:  subgenre,
	}, nil
}
