// Package data provides thread-safe storage for the loaded interaction catalog.
// The DataContainer publishes immutable snapshots through an atomic pointer so
// readers never see a half-built catalog while a reload is in progress.
package data

import (
	"sync/atomic"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
)

// Compile-time check to ensure DataContainer implements DataStore
var _ interfaces.DataStore = (*DataContainer)(nil)

// DataContainer holds the current catalog snapshot for zero-downtime reloads
type DataContainer struct {
	snapshot        atomic.Pointer[interfaces.CatalogSnapshot]
	lastUpdated     atomic.Value // time.Time
	updating        atomic.Bool
	serverStartTime atomic.Value // time.Time
}

// NewDataContainer creates a new DataContainer with no catalog loaded
func NewDataContainer() *DataContainer {
	dc := &DataContainer{}
	dc.lastUpdated.Store(time.Time{})
	dc.serverStartTime.Store(time.Time{})
	return dc
}

// GetSnapshot returns the current snapshot, or nil before the first load.
// Callers should load it once per request and read everything from it.
func (dc *DataContainer) GetSnapshot() *interfaces.CatalogSnapshot {
	return dc.snapshot.Load()
}

// GetDrugs returns the sorted catalog drug names
func (dc *DataContainer) GetDrugs() []string {
	if snapshot := dc.snapshot.Load(); snapshot != nil {
		return snapshot.Drugs
	}

	logging.Debug("Drug list requested before the catalog was loaded")
	return []string{}
}

// GetFacts returns the catalog interaction facts
func (dc *DataContainer) GetFacts() []entities.InteractionFact {
	if snapshot := dc.snapshot.Load(); snapshot != nil {
		return snapshot.Facts
	}

	logging.Debug("Fact list requested before the catalog was loaded")
	return []entities.InteractionFact{}
}

// GetLastUpdated returns the timestamp of the last catalog swap
func (dc *DataContainer) GetLastUpdated() time.Time {
	if v := dc.lastUpdated.Load(); v != nil {
		if lastUpdated, ok := v.(time.Time); ok {
			return lastUpdated
		}
	}

	logging.Warn("Could not get the last updated value")
	return time.Time{}
}

// IsLoaded reports whether the current catalog holds at least one fact
func (dc *DataContainer) IsLoaded() bool {
	snapshot := dc.snapshot.Load()
	return snapshot != nil && len(snapshot.Facts) > 0
}

// IsUpdating returns true if a catalog reload is currently in progress
func (dc *DataContainer) IsUpdating() bool {
	return dc.updating.Load()
}

// SetServerStartTime sets the server start time
func (dc *DataContainer) SetServerStartTime(startTime time.Time) {
	dc.serverStartTime.Store(startTime)
}

// GetServerStartTime returns the server start time
func (dc *DataContainer) GetServerStartTime() time.Time {
	if v := dc.serverStartTime.Load(); v != nil {
		if startTime, ok := v.(time.Time); ok {
			return startTime
		}
	}
	return time.Time{}
}

// UpdateData atomically replaces the published snapshot
func (dc *DataContainer) UpdateData(snapshot *interfaces.CatalogSnapshot) {
	if snapshot == nil {
		logging.Warn("Ignoring nil catalog snapshot")
		return
	}
	dc.snapshot.Store(snapshot)
	dc.lastUpdated.Store(time.Now())
}

// BeginUpdate marks the start of a reload.
// Returns true if the reload can proceed, false if another one is in progress
func (dc *DataContainer) BeginUpdate() bool {
	return dc.updating.CompareAndSwap(false, true)
}

// EndUpdate marks the end of a reload
func (dc *DataContainer) EndUpdate() {
	dc.updating.Store(false)
}
