// Package classifier assigns a severity tier and a localized explanation to
// interaction facts, memoizing results for the lifetime of the process.
package classifier

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/giygas/drug-interactions-api/metrics"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
)

// Compile-time check to ensure CachedClassifier implements Classifier
var _ interfaces.Classifier = (*CachedClassifier)(nil)

// DefaultCallTimeout bounds one collaborator call
const DefaultCallTimeout = 20 * time.Second

// unavailableText is the fallback explanation prefix per language
var unavailableText = map[language.Base]string{
	baseOf(language.Thai):    "ไม่สามารถวิเคราะห์ข้อมูลจาก AI ได้",
	baseOf(language.English): "Unable to analyze this interaction",
}

func baseOf(tag language.Tag) language.Base {
	base, _ := tag.Base()
	return base
}

type cacheKey struct {
	drugA       string
	drugB       string
	description string
}

func (k cacheKey) String() string {
	return strconv.Quote(k.drugA) + "|" + strconv.Quote(k.drugB) + "|" + strconv.Quote(k.description)
}

// CachedClassifier calls the classification backend at most once per
// (drugA, drugB, description) and keeps successful results forever.
// Fallback results are never cached so a later identical request retries.
type CachedClassifier struct {
	backend     interfaces.ClassificationBackend
	language    language.Tag
	callTimeout time.Duration

	mu    sync.RWMutex
	cache map[cacheKey]entities.Classification
	group singleflight.Group
}

// NewCachedClassifier creates a classifier whose explanations are in lang.
func NewCachedClassifier(backend interfaces.ClassificationBackend, lang language.Tag, callTimeout time.Duration) *CachedClassifier {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &CachedClassifier{
		backend:     backend,
		language:    lang,
		callTimeout: callTimeout,
		cache:       make(map[cacheKey]entities.Classification),
	}
}

// Classify returns the classification of one fact. It never fails: when the backend
// is unavailable or replies with something unusable, the outcome holds the
// fallback classification and the error that caused it.
func (c *CachedClassifier) Classify(ctx context.Context, drugA, drugB, description string) interfaces.ClassificationOutcome {
	key := cacheKey{drugA: drugA, drugB: drugB, description: description}

	if cached, ok := c.lookup(key); ok {
		metrics.ClassificationCacheRequestsTotal.WithLabelValues("hit").Inc()
		return interfaces.ClassificationOutcome{Classification: cached}
	}
	metrics.ClassificationCacheRequestsTotal.WithLabelValues("miss").Inc()

	// The call outlives a canceled caller so its result still lands in the cache
	results := c.group.DoChan(key.String(), func() (any, error) {
		if cached, ok := c.lookup(key); ok {
			return cached, nil
		}

		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.callTimeout)
		defer cancel()

		classification, err := c.analyze(callCtx, key)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[key] = classification
		c.mu.Unlock()

		return classification, nil
	})

	select {
	case <-ctx.Done():
		return c.fail(key, ctx.Err())
	case result := <-results:
		if result.Err != nil {
			return c.fail(key, result.Err)
		}
		return interfaces.ClassificationOutcome{Classification: result.Val.(entities.Classification)}
	}
}

// CachedEntries returns the number of memoized classifications
func (c *CachedClassifier) CachedEntries() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *CachedClassifier) lookup(key cacheKey) (entities.Classification, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	classification, ok := c.cache[key]
	return classification, ok
}

func (c *CachedClassifier) analyze(ctx context.Context, key cacheKey) (entities.Classification, error) {
	if c.backend == nil {
		return entities.Classification{}, fmt.Errorf("%w: no backend configured", ErrClassificationUnavailable)
	}

	reply, err := c.backend.Analyze(ctx, interfaces.ClassificationRequest{
		DrugA:       key.drugA,
		DrugB:       key.drugB,
		Description: key.description,
		Language:    c.language,
	})
	if err != nil {
		return entities.Classification{}, fmt.Errorf("%w: %v", ErrClassificationUnavailable, err)
	}

	return ParseReply(reply, c.language)
}

func (c *CachedClassifier) fail(key cacheKey, err error) interfaces.ClassificationOutcome {
	metrics.ClassificationFailuresTotal.WithLabelValues(failureKind(err)).Inc()
	logging.Warn("Classification fell back to default severity",
		"drug_a", key.drugA,
		"drug_b", key.drugB,
		"error", err,
	)
	return interfaces.ClassificationOutcome{Classification: Fallback(c.language, err), Err: err}
}

// Fallback is the classification used when the backend cannot produce one
func Fallback(lang language.Tag, cause error) entities.Classification {
	text, ok := unavailableText[baseOf(lang)]
	if !ok {
		text = unavailableText[baseOf(language.English)]
	}
	return entities.Classification{
		Severity:    entities.SeverityMinor,
		Explanation: fmt.Sprintf("(%s: %v)", text, cause),
	}
}
