// Package scheduler loads the interaction catalog at startup and reloads it on a
// daily schedule. Each load builds the lookup indexes and publishes one new
// snapshot to the data store; a failed reload keeps the previous snapshot.
package scheduler

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser"
	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
	"github.com/giygas/drug-interactions-api/matcher"
	"github.com/giygas/drug-interactions-api/metrics"
	"github.com/giygas/drug-interactions-api/resolver"
	"github.com/go-co-op/gocron"
)

// Compile-time check to ensure Scheduler implements Scheduler interface
var _ interfaces.Scheduler = (*Scheduler)(nil)

// DefaultReloadAt is the daily reload time
const DefaultReloadAt = "03:00"

// Options configures the catalog source and the reload schedule
type Options struct {
	CatalogPath string
	ReloadAt    string // gocron At syntax, "03:00" or "06:00;18:00"
}

// Scheduler handles catalog loads and health monitoring using dependency injection
type Scheduler struct {
	dataStore interfaces.DataStore
	parser    interfaces.Parser
	validator interfaces.DataValidator
	opts      Options
	scheduler *gocron.Scheduler

	// modification time of the last loaded file, guarded by the store's update flag
	lastModTime time.Time
}

// NewScheduler creates a new scheduler instance with injected dependencies
func NewScheduler(dataStore interfaces.DataStore, parser interfaces.Parser, validator interfaces.DataValidator, opts Options) *Scheduler {
	if opts.ReloadAt == "" {
		opts.ReloadAt = DefaultReloadAt
	}
	return &Scheduler{
		dataStore: dataStore,
		parser:    parser,
		validator: validator,
		opts:      opts,
		scheduler: gocron.NewScheduler(time.Local),
	}
}

// Start loads the catalog, then schedules daily reloads and hourly monitoring.
// A failed initial load is not fatal: the API serves an empty catalog until a reload succeeds.
func (s *Scheduler) Start() error {
	if err := s.Load(); err != nil {
		logging.Error("Initial catalog load failed, serving an empty catalog", "error", err)
	}

	s.scheduler.SingletonModeAll()

	_, err := s.scheduler.Every(1).Days().At(s.opts.ReloadAt).Do(func() {
		if err := s.updateData(false); err != nil {
			logging.Error("Failed to reload catalog", "error", err)
		}
	})
	if err != nil {
		logging.Error("Failed to schedule reloads", "error", err)
		return fmt.Errorf("failed to schedule reloads: %w", err)
	}

	_, err = s.scheduler.Every(1).Hours().WaitForSchedule().Do(s.checkHealth)
	if err != nil {
		return fmt.Errorf("failed to schedule health monitoring: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// Load parses the catalog unconditionally and publishes it
func (s *Scheduler) Load() error {
	return s.updateData(true)
}

// updateData performs a complete catalog load. Unless force is set, the load is
// skipped when the file has not changed since the last successful load.
func (s *Scheduler) updateData(force bool) error {
	// Prevent concurrent updates
	if !s.dataStore.BeginUpdate() {
		logging.Info("Catalog update already in progress, skipping...")
		return nil
	}
	defer s.dataStore.EndUpdate()

	modTime, statErr := catalogModTime(s.opts.CatalogPath)
	if !force && statErr == nil && !s.lastModTime.IsZero() && modTime.Equal(s.lastModTime) {
		logging.Info("Catalog unchanged, skipping reload", "path", s.opts.CatalogPath, "modified", modTime)
		return nil
	}

	logging.Info("Starting catalog load", "path", s.opts.CatalogPath)
	start := time.Now()

	catalog, err := s.parser.ParseCatalog(s.opts.CatalogPath)
	if err != nil {
		metrics.CatalogLoadErrorsTotal.WithLabelValues(loadErrorKind(err)).Inc()
		return fmt.Errorf("failed to parse catalog: %w", err)
	}

	s.logQualityReport(catalog)

	snapshot := buildSnapshot(catalog)
	s.dataStore.UpdateData(snapshot)
	if statErr == nil {
		s.lastModTime = modTime
	}

	elapsed := time.Since(start)
	metrics.CatalogLoadDuration.Observe(elapsed.Seconds())
	metrics.CatalogDrugs.Set(float64(len(snapshot.Drugs)))
	metrics.CatalogFacts.Set(float64(len(snapshot.Facts)))

	logging.Info("Catalog load completed",
		"duration", elapsed.String(),
		"drug_count", len(snapshot.Drugs),
		"fact_count", len(snapshot.Facts),
		"pair_count", snapshot.PairIndex.Len(),
	)
	return nil
}

// buildSnapshot indexes a parsed catalog. The snapshot is complete before it is published.
func buildSnapshot(catalog entities.Catalog) *interfaces.CatalogSnapshot {
	return &interfaces.CatalogSnapshot{
		Drugs:     catalog.Drugs,
		Facts:     catalog.Facts,
		PairIndex: resolver.NewIndex(catalog.Facts),
		DrugIndex: matcher.NewIndex(catalog.Drugs),
		Stats:     catalog.Stats,
		LoadedAt:  time.Now(),
	}
}

func (s *Scheduler) logQualityReport(catalog entities.Catalog) {
	if s.validator == nil {
		return
	}
	report := s.validator.ReportCatalogQuality(catalog)

	if report.UnnamedEntries > 0 || report.DuplicateNames > 0 {
		logging.Warn("Catalog entries skipped or merged",
			"unnamed", report.UnnamedEntries,
			"duplicate_names", report.DuplicateNames,
		)
	}

	if report.IncompleteFacts > 0 || report.SelfInteractions > 0 {
		logging.Warn("Interaction facts dropped",
			"incomplete", report.IncompleteFacts,
			"self_interactions", report.SelfInteractions,
		)
	}

	if report.FactsWithUnknownDrug > 0 {
		logging.Warn("Interaction partners without a catalog entry",
			"count", report.FactsWithUnknownDrug,
			"samples", report.UnknownPartnerSamples,
		)
	}

	logging.Debug("Pairs stored in both directions", "count", report.BidirectionalPairs)
}

// checkHealth warns when the catalog is still empty
func (s *Scheduler) checkHealth() {
	if !s.dataStore.IsLoaded() {
		logging.Warn("Catalog is empty, interaction checks return no results",
			"path", s.opts.CatalogPath,
			"last_updated", s.dataStore.GetLastUpdated(),
		)
	}
}

func catalogModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func loadErrorKind(err error) string {
	switch {
	case errors.Is(err, catalogparser.ErrCatalogUnavailable):
		return "unavailable"
	case errors.Is(err, catalogparser.ErrCatalogMalformed):
		return "malformed"
	default:
		return "other"
	}
}
