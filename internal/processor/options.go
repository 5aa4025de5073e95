package processor

import (
	"github.com/deusflow/newsbrief/internal/classifier"
	"github.com/deusflow/newsbrief/internal/metrics"
	"github.com/deusflow/newsbrief/internal/summarizer"
	"github.com/deusflow/newsbrief/internal/taxonomy"
)

type options struct {
	dataset  *taxonomy.Dataset
	dataPath string
	minWords int
	maxWords int
	eager    bool
	trainCfg classifier.TrainConfig
	metrics  *metrics.Metrics
}

// Option configures a Processor.
type Option func(*options)

// WithDataset uses an already loaded taxonomy and seed corpus.
func WithDataset(ds *taxonomy.Dataset) Option {
	return func(o *options) {
		o.dataset = ds
	}
}

// WithDataFile loads the taxonomy and seed corpus from a YAML file instead of
// the embedded default. Ignored when WithDataset is also given.
func WithDataFile(path string) Option {
	return func(o *options) {
		o.dataPath = path
	}
}

// WithSummaryBand sets the summary word floor and ceiling. Default: 40-50.
func WithSummaryBand(minWords, maxWords int) Option {
	return func(o *options) {
		o.minWords = minWords
		o.maxWords = maxWords
	}
}

// WithEagerTraining trains the classifier inside New instead of on first use.
func WithEagerTraining() Option {
	return func(o *options) {
		o.eager = true
	}
}

// WithTrainConfig overrides the classifier hyperparameters.
func WithTrainConfig(cfg classifier.TrainConfig) Option {
	return func(o *options) {
		o.trainCfg = cfg
	}
}

// WithMetrics records processor counters into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

func defaultOptions() options {
	return options{
		minWords: summarizer.DefaultMinWords,
		maxWords: summarizer.DefaultMaxWords,
		trainCfg: classifier.DefaultTrainConfig(),
	}
}
