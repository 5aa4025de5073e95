package classifier

import (
	"math"
	"sort"

	"github.com/deusflow/newsbrief/internal/textproc"
)

// feature is one non-zero entry of a sparse row.
type feature struct {
	idx int
	val float64
}

// vector is a sparse row sorted by feature index.
type vector []feature

func (v vector) dot(w []float64) float64 {
	var s float64
	for _, f := range v {
		s += f.val * w[f.idx]
	}
	return s
}

func (v vector) sqNorm() float64 {
	var s float64
	for _, f := range v {
		s += f.val * f.val
	}
	return s
}

// Vectorizer turns text into L2-normalized TF-IDF rows over stopword-filtered
// unigrams and bigrams.
type Vectorizer struct {
	minDF int
	maxDF float64

	vocab map[string]int
	terms []string
	idf   []float64
}

// NewVectorizer creates an unfitted Vectorizer. Terms found in fewer than
// minDF documents, or in more than maxDF of them (a ratio), are dropped.
func NewVectorizer(minDF int, maxDF float64) *Vectorizer {
	if minDF < 1 {
		minDF = 1
	}
	if maxDF <= 0 || maxDF > 1 {
		maxDF = 1
	}
	return &Vectorizer{minDF: minDF, maxDF: maxDF}
}

// ngrams returns unigrams followed by bigrams of adjacent content words.
func ngrams(text string) []string {
	words := textproc.ContentWords(text)
	if len(words) == 0 {
		return nil
	}
	out := make([]string, 0, 2*len(words)-1)
	out = append(out, words...)
	for i := 0; i+1 < len(words); i++ {
		out = append(out, words[i]+" "+words[i+1])
	}
	return out
}

// Fit learns the vocabulary and IDF weights. The vocabulary is sorted so
// feature indices do not depend on map iteration order.
func (v *Vectorizer) Fit(docs []string) {
	n := len(docs)
	df := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]struct{})
		for _, g := range ngrams(doc) {
			if _, dup := seen[g]; dup {
				continue
			}
			seen[g] = struct{}{}
			df[g]++
		}
	}

	maxCount := n
	if n > 1 && v.maxDF < 1 {
		maxCount = int(math.Floor(v.maxDF * float64(n)))
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.minDF || count > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
}

// Transform maps text onto the fitted vocabulary. Unknown terms are ignored;
// text with no known terms gives an empty row.
func (v *Vectorizer) Transform(text string) vector {
	counts := make(map[int]float64)
	for _, g := range ngrams(text) {
		if idx, ok := v.vocab[g]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return nil
	}

	row := make(vector, 0, len(counts))
	for idx, tf := range counts {
		row = append(row, feature{idx: idx, val: tf * v.idf[idx]})
	}
	// The norm must be summed in index order to be reproducible.
	sort.Slice(row, func(i, j int) bool { return row[i].idx < row[j].idx })

	norm := math.Sqrt(row.sqNorm())
	for i := range row {
		row[i].val /= norm
	}
	return row
}

// Dim is the vocabulary size.
func (v *Vectorizer) Dim() int {
	return len(v.terms)
}
