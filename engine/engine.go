// Package engine answers drug search and interaction queries against the
// currently loaded catalog snapshot.
package engine

import (
	"context"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/giygas/drug-interactions-api/matcher"
	"github.com/giygas/drug-interactions-api/normalizer"
	"github.com/giygas/drug-interactions-api/resolver"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
)

// ErrInsufficientInputs is returned by CheckInteractions for fewer than two names
var ErrInsufficientInputs = resolver.ErrInsufficientInputs

// Compile-time check to ensure Engine implements interfaces.Engine
var _ interfaces.Engine = (*Engine)(nil)

const (
	DefaultSearchLimit = 10
	DefaultConcurrency = 8
)

// Options configures an Engine
type Options struct {
	SearchLimit int
	Language    language.Tag // language of localized labels
	Concurrency int          // outbound calls in flight per request
}

// Engine wires the normalizer, the pair index and the classifier together
type Engine struct {
	store      interfaces.DataStore
	normalizer *normalizer.Normalizer
	classifier interfaces.Classifier
	opts       Options
}

// New creates an Engine reading snapshots from store
func New(store interfaces.DataStore, norm *normalizer.Normalizer, classifier interfaces.Classifier, opts Options) *Engine {
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = DefaultSearchLimit
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Language == language.Und {
		opts.Language = language.Thai
	}
	if norm == nil {
		norm = normalizer.NewNormalizer(nil, normalizer.DefaultOptions())
	}
	return &Engine{store: store, normalizer: norm, classifier: classifier, opts: opts}
}

func (e *Engine) indexes() (*matcher.Index, *resolver.Index) {
	snapshot := e.store.GetSnapshot()
	if snapshot == nil {
		return nil, nil
	}
	return snapshot.DrugIndex, snapshot.PairIndex
}

// Search returns up to SearchLimit canonical names matching query, best first
func (e *Engine) Search(ctx context.Context, query string) []string {
	drugIndex, _ := e.indexes()
	if drugIndex.Len() == 0 {
		return []string{}
	}

	cleaned := e.normalizer.Clean(ctx, query)
	matches := drugIndex.Top(cleaned, e.opts.SearchLimit)

	names := make([]string, len(matches))
	for i, match := range matches {
		names[i] = match.Name
	}
	return names
}

// CheckInteractions normalizes rawNames and returns every interacting pair
// in combination order, each with its classification.
func (e *Engine) CheckInteractions(ctx context.Context, rawNames []string) ([]entities.ResolvedInteraction, error) {
	if len(rawNames) < 2 {
		return nil, ErrInsufficientInputs
	}

	// one snapshot for the whole request
	drugIndex, pairIndex := e.indexes()

	names := make([]string, len(rawNames))
	g := new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)
	for i, raw := range rawNames {
		g.Go(func() error {
			names[i] = e.normalizer.Normalize(ctx, drugIndex, raw)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	pairs, err := resolver.Pairs(names)
	if err != nil {
		return nil, err
	}
	resolved := pairIndex.Resolve(pairs)

	logging.Debug("Resolved interaction pairs",
		"inputs", len(rawNames),
		"pairs", len(pairs),
		"matches", len(resolved),
	)

	interactions := make([]entities.ResolvedInteraction, len(resolved))
	g = new(errgroup.Group)
	g.SetLimit(e.opts.Concurrency)
	for i, pair := range resolved {
		g.Go(func() error {
			interactions[i] = e.resolveOne(ctx, pair)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return interactions, nil
}

func (e *Engine) resolveOne(ctx context.Context, pair resolver.ResolvedPair) entities.ResolvedInteraction {
	outcome := e.classifier.Classify(ctx, pair.Fact.DrugA, pair.Fact.DrugB, pair.Fact.Description)
	severity := outcome.Classification.Severity

	return entities.ResolvedInteraction{
		Drug1:                pair.A,
		Drug2:                pair.B,
		Severity:             severity,
		SeverityLocalized:    severity.Label(e.opts.Language),
		Description:          pair.Fact.Description,
		DescriptionLocalized: outcome.Classification.Explanation,
	}
}

// Health reports the catalog state and cache size from a single snapshot
func (e *Engine) Health() interfaces.HealthReport {
	report := interfaces.HealthReport{
		LastUpdated:           e.store.GetLastUpdated(),
		IsUpdating:            e.store.IsUpdating(),
		CachedClassifications: e.classifier.CachedEntries(),
	}
	if snapshot := e.store.GetSnapshot(); snapshot != nil {
		report.DrugCount = len(snapshot.Drugs)
		report.FactCount = len(snapshot.Facts)
		report.CatalogLoaded = report.FactCount > 0
		if !snapshot.LoadedAt.IsZero() {
			report.LastUpdated = snapshot.LoadedAt
		}
	}
	return report
}
