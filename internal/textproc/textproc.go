// Package textproc has the tokenizers shared by the summarizer and the
// subgenre classifier: a heuristic sentence splitter, an alphabetic word
// tokenizer with Unicode case folding, and whitespace word counting.
package textproc

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Abbreviations that end in a period without ending the sentence.
var abbreviations = toSet([]string{
	"mr", "mrs", "ms", "dr", "prof", "sr", "jr", "st", "mt", "vs", "etc", "inc", "ltd", "co",
	"corp", "dept", "gen", "gov", "sen", "rep", "col", "lt", "sgt", "capt", "cmdr", "adm",
	"no", "nos", "fig", "approx", "est", "jan", "feb", "mar", "apr", "jun", "jul", "aug",
	"sep", "sept", "oct", "nov", "dec", "rs", "hon", "rev",
})

// Sentences splits text into sentences. A boundary is a run of '.', '!' or
// '?' (plus closing quotes or brackets) followed by whitespace and a rune
// that can open a sentence, or a blank line. Returned sentences have their
// inner whitespace collapsed to single spaces.
func Sentences(text string) []string {
	runes := []rune(text)
	n := len(runes)

	var out []string
	start := 0
	emit := func(end int) {
		s := strings.Join(strings.Fields(string(runes[start:end])), " ")
		if s != "" {
			out = append(out, s)
		}
		start = end
	}

	for i := 0; i < n; i++ {
		r := runes[i]

		if r == '\n' {
			j := i + 1
			for j < n && runes[j] != '\n' && unicode.IsSpace(runes[j]) {
				j++
			}
			if j < n && runes[j] == '\n' {
				emit(i)
				i = j
			}
			continue
		}

		if !isTerminator(r) {
			continue
		}

		j := i + 1
		for j < n && isTerminator(runes[j]) {
			j++
		}
		for j < n && isCloser(runes[j]) {
			j++
		}
		if j >= n {
			break
		}
		if !unicode.IsSpace(runes[j]) {
			i = j - 1
			continue
		}

		k := j
		for k < n && unicode.IsSpace(runes[k]) {
			k++
		}
		if k >= n {
			break
		}
		if !opensSentence(runes[k]) {
			i = j - 1
			continue
		}
		if r == '.' && j == i+1 && isAbbreviation(precedingToken(runes, i)) {
			i = j - 1
			continue
		}

		emit(j)
		i = k - 1
	}
	emit(n)

	return out
}

// Words returns the alphabetic tokens of text, case-folded. Anything that is
// not a letter separates tokens, so "Modi's" yields "modi" and "s".
func Words(text string) []string {
	folded := cases.Fold().String(text)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// ContentWords is Words without stopwords.
func ContentWords(text string) []string {
	words := Words(text)
	out := words[:0]
	for _, w := range words {
		if !IsStopword(w) {
			out = append(out, w)
		}
	}
	return out
}

// WordCount counts whitespace-delimited words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// TruncateWords keeps the first n whitespace-delimited words, joined by
// single spaces.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if n < 0 {
		n = 0
	}
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '”', '’', '»':
		return true
	}
	return false
}

func opensSentence(r rune) bool {
	if unicode.IsUpper(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '"', '\'', '(', '[', '“', '‘', '«':
		return true
	}
	return false
}

// precedingToken returns the non-space run that ends right before index end.
func precedingToken(runes []rune, end int) string {
	begin := end
	for begin > 0 && !unicode.IsSpace(runes[begin-1]) {
		begin--
	}
	return string(runes[begin:end])
}

func isAbbreviation(token string) bool {
	token = strings.TrimLeft(token, "\"'([“‘«")
	if token == "" {
		return false
	}
	if utf8.RuneCountInString(token) == 1 {
		r, _ := utf8.DecodeRuneInString(token)
		return unicode.IsLetter(r)
	}
	if strings.Contains(token, ".") {
		return true
	}
	_, ok := abbreviations[cases.Fold().String(token)]
	return ok
}
