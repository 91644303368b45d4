package analysis

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/labsharedao/biomed-gateway/lib/biomed"
)

// Relevance scores how biomedical a proposal is:
// min(1, 0.1 x biomedical entity count + 0.4 x fraction of entities with a
// confident score). No entities means zero.
func Relevance(entities []biomed.Entity) float64 {
	if len(entities) == 0 {
		return 0
	}

	var biomedical, confident int
	for _, e := range entities {
		if Categorize(e.EntityGroup) != CategoryOther {
			biomedical++
		}
		if e.Score >= ConfidentScore {
			confident++
		}
	}

	score := RelevancePerEntity*float64(biomedical) +
		RelevanceConfidentPart*(float64(confident)/float64(len(entities)))
	if score > 1 {
		return 1
	}
	return score
}

// KeyTerms returns up to MaxKeyTerms distinct surface forms ordered by
// descending score. Deduplication folds case after NFKC normalization so
// "CRISPR" and "crispr" count once.
func KeyTerms(entities []biomed.Entity) []string {
	ordered := make([]biomed.Entity, len(entities))
	copy(ordered, entities)
	sort.SliceStable(ordered, func(a, b int) bool {
		return ordered[a].Score > ordered[b].Score
	})

	seen := make(map[string]struct{}, len(ordered))
	terms := make([]string, 0, MaxKeyTerms)
	for _, e := range ordered {
		key := foldTerm(e.Word)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		terms = append(terms, e.Word)
		if len(terms) == MaxKeyTerms {
			break
		}
	}
	return terms
}

func foldTerm(term string) string {
	return strings.ToLower(norm.NFKC.String(strings.TrimSpace(term)))
}
