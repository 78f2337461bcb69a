package supplier

import (
	"math"
	"regexp"

	"github.com/asysta-erp/asysta-erp/internal/platform/textfold"
)

// Tokens are 2+ alphanumeric runs on folded lower-case text.
var tokenPattern = regexp.MustCompile(`[a-z0-9]{2,}`)

func tokenize(s string) []string {
	return tokenPattern.FindAllString(textfold.Normalize(s), -1)
}

// vectorizer holds a tf-idf vocabulary over the candidate product names.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func newVectorizer(docs []string) *vectorizer {
	v := &vectorizer{vocab: make(map[string]int)}
	df := make([]int, 0)
	for _, doc := range docs {
		seen := make(map[int]bool)
		for _, tok := range tokenize(doc) {
			idx, ok := v.vocab[tok]
			if !ok {
				idx = len(v.vocab)
				v.vocab[tok] = idx
				df = append(df, 0)
			}
			if !seen[idx] {
				df[idx]++
				seen[idx] = true
			}
		}
	}
	n := float64(len(docs))
	v.idf = make([]float64, len(df))
	for i, count := range df {
		// smoothed idf, so terms present everywhere still carry weight
		v.idf[i] = math.Log((1+n)/(1+float64(count))) + 1
	}
	return v
}

// vector returns the l2-normalised tf-idf vector, or nil when the document
// shares no vocabulary with the corpus.
func (v *vectorizer) vector(doc string) []float64 {
	vec := make([]float64, len(v.idf))
	known := false
	for _, tok := range tokenize(doc) {
		if idx, ok := v.vocab[tok]; ok {
			vec[idx] += v.idf[idx]
			known = true
		}
	}
	if !known {
		return nil
	}
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

// cosine assumes both vectors are l2-normalised.
func cosine(a, b []float64) float64 {
	var dot float64
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}
