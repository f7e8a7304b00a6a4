package service

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"

	pgvector "github.com/pgvector/pgvector-go"

	"github.com/pageza/cravewise/backend/internal/models"
)

// stopWords carry no signal about what someone is craving.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "the": {}, "of": {}, "to": {}, "for": {}, "with": {},
	"i": {}, "im": {}, "i'm": {}, "me": {}, "my": {}, "some": {}, "something": {},
	"want": {}, "craving": {}, "really": {}, "that": {}, "is": {}, "in": {}, "or": {},
}

// GenerateEmbedding returns a deterministic hashed bag-of-words embedding for
// the given text, L2 normalized so that Euclidean distance ranks like cosine.
func GenerateEmbedding(text string) pgvector.Vector {
	vec := make([]float32, models.EmbeddingDims)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum32()
		idx := sum % models.EmbeddingDims
		// The top bit picks the sign.
		if sum&(1<<31) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return pgvector.NewVector(vec)
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\''
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, "'")
		if f == "" {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// euclidean is the distance used when the database cannot rank vectors.
func euclidean(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
