// Package resolver looks up interaction facts by unordered drug pair.
package resolver

import (
	"errors"
	"strings"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
)

// ErrInsufficientInputs is returned when fewer than two drugs are given
var ErrInsufficientInputs = errors.New("at least 2 drugs are required")

// Pair is an unordered query pair. A and B keep the order they were submitted in.
type Pair struct {
	A string
	B string
}

// ResolvedPair is a pair with the fact that matched it
type ResolvedPair struct {
	Pair
	Fact entities.InteractionFact
}

type pairKey struct {
	lo, hi string
}

func keyOf(a, b string) pairKey {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if b < a {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// Index maps each unordered pair to the first fact stored for it.
// Both storage directions of a pair share one bucket. Immutable once built.
type Index struct {
	facts   []entities.InteractionFact
	buckets map[pairKey]int
}

// NewIndex builds the pair index. Facts are kept in catalog order
// so the first stored fact of a pair wins.
func NewIndex(facts []entities.InteractionFact) *Index {
	idx := &Index{
		facts:   facts,
		buckets: make(map[pairKey]int, len(facts)),
	}
	for i, fact := range facts {
		key := keyOf(fact.DrugA, fact.DrugB)
		if key.lo == key.hi {
			continue
		}
		if _, exists := idx.buckets[key]; !exists {
			idx.buckets[key] = i
		}
	}
	return idx
}

// Len returns the number of distinct pairs
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.buckets)
}

// Lookup returns the fact for the pair {a, b} regardless of order.
func (idx *Index) Lookup(a, b string) (entities.InteractionFact, bool) {
	if idx == nil {
		return entities.InteractionFact{}, false
	}
	i, ok := idx.buckets[keyOf(a, b)]
	if !ok {
		return entities.InteractionFact{}, false
	}
	return idx.facts[i], true
}

// Resolve looks up every pair and keeps those that have a fact, in input order.
func (idx *Index) Resolve(pairs []Pair) []ResolvedPair {
	resolved := make([]ResolvedPair, 0, len(pairs))
	for _, pair := range pairs {
		if fact, ok := idx.Lookup(pair.A, pair.B); ok {
			resolved = append(resolved, ResolvedPair{Pair: pair, Fact: fact})
		}
	}
	return resolved
}

// Pairs returns the distinct unordered 2-combinations of names in combination order.
// Pairs of a name with itself are left out.
func Pairs(names []string) ([]Pair, error) {
	if len(names) < 2 {
		return nil, ErrInsufficientInputs
	}

	seen := make(map[pairKey]struct{})
	pairs := make([]Pair, 0, len(names)*(len(names)-1)/2)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			key := keyOf(names[i], names[j])
			if key.lo == key.hi {
				continue
			}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			pairs = append(pairs, Pair{A: names[i], B: names[j]})
		}
	}
	return pairs, nil
}
