// Package summarizer builds extractive summaries by ranking sentences on the
// article-wide frequency of their content words.
package summarizer

import (
	"sort"
	"strings"

	"github.com/deusflow/newsbrief/internal/textproc"
)

const (
	DefaultMinWords = 40
	DefaultMaxWords = 50
)

type options struct {
	minWords int
	maxWords int
}

// Option configures a Summarizer.
type Option func(*options)

// WithMinWords sets the word floor the greedy selection tries to reach.
func WithMinWords(n int) Option {
	return func(o *options) {
		o.minWords = n
	}
}

// WithMaxWords sets the hard word ceiling of a summary.
func WithMaxWords(n int) Option {
	return func(o *options) {
		o.maxWords = n
	}
}

// Summarizer is stateless after construction and safe for concurrent use.
type Summarizer struct {
	minWords int
	maxWords int
}

// New creates a Summarizer. Non-positive bounds fall back to the defaults and
// a floor above the ceiling is clamped to the ceiling.
func New(opts ...Option) *Summarizer {
	o := options{minWords: DefaultMinWords, maxWords: DefaultMaxWords}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxWords <= 0 {
		o.maxWords = DefaultMaxWords
	}
	if o.minWords <= 0 {
		o.minWords = DefaultMinWords
	}
	if o.minWords > o.maxWords {
		o.minWords = o.maxWords
	}
	return &Summarizer{minWords: o.minWords, maxWords: o.maxWords}
}

// MinWords returns the configured floor.
func (s *Summarizer) MinWords() int { return s.minWords }

// MaxWords returns the configured ceiling.
func (s *Summarizer) MaxWords() int { return s.maxWords }

type scoredSentence struct {
	pos   int
	text  string
	words int
	score int
}

// Summarize returns at most MaxWords words drawn verbatim from text.
// Short inputs (two sentences or fewer, or already within the ceiling) are
// returned whitespace-normalized and truncated. Empty input gives "".
func (s *Summarizer) Summarize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	sentences := textproc.Sentences(text)
	if len(sentences) <= 2 || textproc.WordCount(text) <= s.maxWords {
		return textproc.TruncateWords(text, s.maxWords)
	}

	freq := make(map[string]int)
	for _, w := range textproc.ContentWords(text) {
		freq[w]++
	}
	if len(freq) == 0 {
		return textproc.TruncateWords(text, s.maxWords)
	}

	ranked := make([]scoredSentence, len(sentences))
	for i, sent := range sentences {
		score := 0
		for _, w := range textproc.Words(sent) {
			score += freq[w]
		}
		ranked[i] = scoredSentence{
			pos:   i,
			text:  sent,
			words: textproc.WordCount(sent),
			score: score,
		}
	}

	// Ties go to the earlier sentence.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	var picked []scoredSentence
	total := 0
	for _, sent := range ranked {
		if total >= s.minWords {
			break
		}
		picked = append(picked, sent)
		total += sent.words
	}

	sort.Slice(picked, func(i, j int) bool {
		return picked[i].pos < picked[j].pos
	})

	parts := make([]string, len(picked))
	for i, sent := range picked {
		parts[i] = sent.text
	}
	summary := strings.Join(parts, " ")

	if total > s.maxWords {
		return textproc.TruncateWords(summary, s.maxWords)
	}
	return summary
}
