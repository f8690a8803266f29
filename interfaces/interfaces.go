// Package interfaces defines core abstractions for the drug interactions API
// to improve testability, maintainability, and separation of concerns.
package interfaces

import (
	"context"
	"net/http"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/matcher"
	"github.com/giygas/drug-interactions-api/resolver"
	"golang.org/x/text/language"
)

// CatalogSnapshot is one fully loaded catalog with its lookup indexes.
// A snapshot is never modified after it has been published.
type CatalogSnapshot struct {
	Drugs     []string
	Facts     []entities.InteractionFact
	PairIndex *resolver.Index
	DrugIndex *matcher.Index
	Stats     entities.ParseStats
	LoadedAt  time.Time
}

// CatalogQualityReport provides a summary of catalog quality issues
type CatalogQualityReport struct {
	DuplicateNames        int
	UnnamedEntries        int
	IncompleteFacts       int
	SelfInteractions      int
	FactsWithUnknownDrug  int      // partner is not a catalog entry
	BidirectionalPairs    int      // pairs stored once per direction
	UnknownPartnerSamples []string // first few unknown partners, for logs
}

// HealthReport is the engine's view of its own state
type HealthReport struct {
	CatalogLoaded         bool      `json:"catalog_loaded"`
	DrugCount             int       `json:"drug_count"`
	FactCount             int       `json:"fact_count"`
	LastUpdated           time.Time `json:"last_updated"`
	IsUpdating            bool      `json:"is_updating"`
	CachedClassifications int       `json:"cached_classifications"`
}

// DataStore defines the contract for catalog storage.
// It provides thread-safe access to the current snapshot
// with atomic replacement on reload.
type DataStore interface {
	GetSnapshot() *CatalogSnapshot
	GetDrugs() []string
	GetFacts() []entities.InteractionFact
	GetLastUpdated() time.Time
	IsLoaded() bool
	IsUpdating() bool

	UpdateData(snapshot *CatalogSnapshot)
	BeginUpdate() bool
	EndUpdate()
}

// Parser defines the contract for reading the catalog source.
type Parser interface {
	// ParseCatalog streams the catalog document at path into drugs and facts
	ParseCatalog(path string) (entities.Catalog, error)
}

// Translator translates text between languages.
type Translator interface {
	Translate(ctx context.Context, text string, source, target language.Tag) (string, error)
}

// ClassificationRequest is what the classification collaborator is asked about
type ClassificationRequest struct {
	DrugA       string
	DrugB       string
	Description string
	Language    language.Tag // language of the explanation
}

// ClassificationBackend is the external severity/explanation service.
// It returns the raw reply text, which may wrap the JSON object in prose.
type ClassificationBackend interface {
	Analyze(ctx context.Context, req ClassificationRequest) (string, error)
}

// ClassificationOutcome is either a validated classification (Err == nil)
// or the fallback classification together with the error that triggered it.
type ClassificationOutcome struct {
	Classification entities.Classification
	Err            error
}

// Fallback reports whether the outcome carries the fallback classification
func (o ClassificationOutcome) Fallback() bool {
	return o.Err != nil
}

// Classifier returns a severity tier and explanation for a fact. It never fails outward.
type Classifier interface {
	Classify(ctx context.Context, drugA, drugB, description string) ClassificationOutcome
	CachedEntries() int
}

// Engine is the surface the transport and CLI layers call.
type Engine interface {
	Search(ctx context.Context, query string) []string
	CheckInteractions(ctx context.Context, rawNames []string) ([]entities.ResolvedInteraction, error)
	Health() HealthReport
}

// Scheduler defines the contract for catalog reload scheduling.
type Scheduler interface {
	// Lifecycle management
	Start() error
	Stop()
}

// HTTPHandler defines the contract for HTTP request handlers.
type HTTPHandler interface {
	SearchDrugs(w http.ResponseWriter, r *http.Request)
	CheckInteractions(w http.ResponseWriter, r *http.Request)
	HealthCheck(w http.ResponseWriter, r *http.Request)
}

// HealthChecker defines the contract for health check functionality.
type HealthChecker interface {
	// HealthCheck returns current system health status
	HealthCheck() (status string, details map[string]any, httpStatus int)
}

// DataValidator defines the contract for data validation operations.
type DataValidator interface {
	// ValidateDrugName validates one user supplied drug name
	ValidateDrugName(input string) error

	// ValidateDrugList validates the list sent to check_interactions
	ValidateDrugList(names []string) error

	// ValidateSearchQuery validates a search query, which may be empty
	ValidateSearchQuery(query string) error

	// ReportCatalogQuality generates a quality report for a parsed catalog
	ReportCatalogQuality(catalog entities.Catalog) *CatalogQualityReport
}
