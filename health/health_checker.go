// Package health provides health checking functionality for the drug interactions API.
package health

import (
	"math"
	"net/http"
	"time"

	"github.com/giygas/drug-interactions-api/interfaces"
)

// HealthCheckerImpl implements the interfaces.HealthChecker interface
type HealthCheckerImpl struct {
	engine interfaces.Engine
}

// NewHealthChecker creates a new health checker with injected dependencies
func NewHealthChecker(engine interfaces.Engine) interfaces.HealthChecker {
	return &HealthCheckerImpl{
		engine: engine,
	}
}

// HealthCheck returns the /health payload. The service is unhealthy while the
// catalog holds no facts; a reload in progress keeps serving the previous catalog.
func (h *HealthCheckerImpl) HealthCheck() (status string, data map[string]any, httpStatus int) {
	report := h.engine.Health()

	if report.CatalogLoaded {
		status = "healthy"
		httpStatus = http.StatusOK
	} else {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	data = map[string]any{
		"data_loaded":            report.CatalogLoaded,
		"drugs":                  report.DrugCount,
		"interactions":           report.FactCount,
		"is_updating":            report.IsUpdating,
		"cached_classifications": report.CachedClassifications,
	}

	if !report.LastUpdated.IsZero() {
		dataAge := time.Since(report.LastUpdated)
		data["last_update"] = report.LastUpdated.Format(time.RFC3339)
		data["data_age_hours"] = math.Round(dataAge.Hours()*10) / 10
	}

	return status, data, httpStatus
}
