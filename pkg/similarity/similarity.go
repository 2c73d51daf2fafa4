package similarity

import (
	"math"
	"regexp"
	"strings"

	"github.com/shoplens/seoaudit/pkg/htmltext"
)

var tokenRe = regexp.MustCompile(`[a-z0-9']+`)

// Score computes Jaccard similarity between two text blobs as a percentage
// in [0,100], rounded to one decimal. Markup is stripped and tokens are
// compared as a set of unique lowercase words. Either side tokenizing to an
// empty set scores 0, including against itself.
//
// Cheap by construction: no embeddings, no external calls. Good enough to
// flag near-duplicate product copy.
func Score(text1, text2 string) float64 {
	a := tokens(text1)
	b := tokens(text2)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection

	return math.Round(float64(intersection)/float64(union)*1000) / 10
}

func tokens(text string) map[string]struct{} {
	plain := strings.ToLower(htmltext.StripTags(text))
	set := make(map[string]struct{})
	for _, w := range tokenRe.FindAllString(plain, -1) {
		set[w] = struct{}{}
	}
	return set
}
