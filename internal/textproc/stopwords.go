package textproc

// English stopwords. Tokens here are already case-folded and, because Words
// splits on apostrophes, contraction fragments ("s", "t", "ll", ...) are
// listed on their own.
var stopwords = toSet([]string{
	"a", "about", "above", "after", "again", "against", "ain", "all", "also", "am", "an", "and",
	"any", "are", "aren", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "could", "couldn", "d", "did", "didn", "do", "does",
	"doesn", "doing", "don", "down", "during", "each", "few", "for", "from", "further", "had",
	"hadn", "has", "hasn", "have", "haven", "having", "he", "her", "here", "hers", "herself",
	"him", "himself", "his", "how", "i", "if", "in", "into", "is", "isn", "it", "its", "itself",
	"just", "ll", "m", "ma", "may", "me", "might", "mightn", "more", "most", "must", "mustn", "my",
	"myself", "needn", "no", "nor", "not", "now", "o", "of", "off", "on", "once", "only", "or",
	"other", "our", "ours", "ourselves", "out", "over", "own", "re", "s", "same", "shall", "shan",
	"she", "should", "shouldn", "so", "some", "such", "t", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they", "this", "those", "through",
	"to", "too", "under", "until", "up", "upon", "ve", "very", "was", "wasn", "we", "were",
	"weren", "what", "when", "where", "which", "while", "who", "whom", "why", "will", "with",
	"won", "would", "wouldn", "y", "you", "your", "yours", "yourself", "yourselves",
})

func toSet(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}

// IsStopword reports whether a case-folded token is an English stopword.
func IsStopword(word string) bool {
	_, ok := stopwords[word]
	return ok
}
