package matcher

import (
	"cmp"
	"slices"
)

// Match is one candidate with its score
type Match struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type candidate struct {
	name   string
	folded string
}

// Index holds the canonical names in catalog order with their folded forms.
// It is immutable once built and safe for concurrent use.
type Index struct {
	candidates []candidate
}

// NewIndex builds an index over names. Order is kept: ties go to the earlier name.
func NewIndex(names []string) *Index {
	candidates := make([]candidate, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, candidate{name: name, folded: Fold(name)})
	}
	return &Index{candidates: candidates}
}

// Len returns the number of indexed names
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.candidates)
}

// Best returns the single highest scoring name. ok is false when the index is empty.
func (idx *Index) Best(query string) (match Match, ok bool) {
	if idx.Len() == 0 {
		return Match{}, false
	}

	folded := Fold(query)
	for i, c := range idx.candidates {
		s := score(folded, c.folded)
		if i == 0 || s > match.Score {
			match = Match{Name: c.name, Score: s}
			if s == 100 {
				break
			}
		}
	}
	return match, true
}

// Top returns up to limit names with a positive score, best first.
// Equal scores keep index order.
func (idx *Index) Top(query string, limit int) []Match {
	if idx.Len() == 0 || limit <= 0 {
		return []Match{}
	}

	folded := Fold(query)
	if folded == "" {
		return []Match{}
	}

	matches := make([]Match, 0, limit)
	for _, c := range idx.candidates {
		if s := score(folded, c.folded); s > 0 {
			matches = append(matches, Match{Name: c.name, Score: s})
		}
	}

	slices.SortStableFunc(matches, func(a, b Match) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
