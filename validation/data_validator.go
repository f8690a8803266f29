// Package validation provides input validation and catalog quality reporting
// for the drug interactions API.
package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
)

const (
	// MaxNameLength is the longest accepted drug name, in characters
	MaxNameLength = 100
	// DefaultMaxDrugsPerRequest caps the list sent to check_interactions
	DefaultMaxDrugsPerRequest = 25

	maxUnknownPartnerSamples = 10
)

// Pre-compiled regex patterns, reused for all validations
var (
	// Letters and combining marks of any script (Thai vowels are marks),
	// digits and the punctuation found in drug names
	inputRegex = regexp.MustCompile(`^[\p{L}\p{M}\p{N}\s\-\.\+',()/]+$`)

	// Dangerous patterns as strings (faster than regex for simple substring matching)
	dangerousPatterns = []string{
		"<script", "</script>", "javascript:", "vbscript:", "onload=", "onerror=",
		"eval(", "expression(", "url(", "@import",
		// SQL injection patterns
		"' or ", "union select", "drop table", "delete from", "insert into",
		"--", "/*", "*/", "exec(", "execute(",
		// Command injection patterns
		"`", "$(", "${",
		// Path traversal patterns
		"../", "..\\", "%2e%2e", "file://",
	}
)

// DataValidatorImpl implements the interfaces.DataValidator interface
type DataValidatorImpl struct {
	maxDrugsPerRequest int
}

// NewDataValidator creates a new data validator. A non-positive maxDrugsPerRequest
// uses DefaultMaxDrugsPerRequest.
func NewDataValidator(maxDrugsPerRequest int) interfaces.DataValidator {
	if maxDrugsPerRequest <= 0 {
		maxDrugsPerRequest = DefaultMaxDrugsPerRequest
	}
	return &DataValidatorImpl{maxDrugsPerRequest: maxDrugsPerRequest}
}

// ValidateDrugName validates one user supplied drug name
func (v *DataValidatorImpl) ValidateDrugName(input string) error {
	if strings.TrimSpace(input) == "" {
		return fmt.Errorf("drug name cannot be empty")
	}

	if !utf8.ValidString(input) {
		return fmt.Errorf("drug name is not valid UTF-8")
	}

	if utf8.RuneCountInString(input) > MaxNameLength {
		return fmt.Errorf("drug name too long: maximum %d characters", MaxNameLength)
	}

	lowerInput := strings.ToLower(input)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lowerInput, pattern) {
			return fmt.Errorf("drug name contains potentially dangerous content")
		}
	}

	if !inputRegex.MatchString(input) {
		return fmt.Errorf("drug name contains invalid characters. Only letters, digits, spaces and - . + ' , ( ) / are allowed")
	}

	if hasExcessiveRepetition(input) {
		return fmt.Errorf("drug name contains excessive character repetition")
	}

	return nil
}

// ValidateDrugList validates every name of a check_interactions request.
// Lists shorter than two names are left to the engine.
func (v *DataValidatorImpl) ValidateDrugList(names []string) error {
	if len(names) > v.maxDrugsPerRequest {
		return fmt.Errorf("too many drugs: maximum %d per request", v.maxDrugsPerRequest)
	}

	for i, name := range names {
		if err := v.ValidateDrugName(name); err != nil {
			return fmt.Errorf("drug %d: %w", i+1, err)
		}
	}
	return nil
}

// ValidateSearchQuery validates a search query. An empty query is valid.
func (v *DataValidatorImpl) ValidateSearchQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return v.ValidateDrugName(query)
}

// ReportCatalogQuality summarizes what the loader skipped and what looks odd
// in the loaded facts.
func (v *DataValidatorImpl) ReportCatalogQuality(catalog entities.Catalog) *interfaces.CatalogQualityReport {
	report := &interfaces.CatalogQualityReport{
		DuplicateNames:        catalog.Stats.DuplicateNames,
		UnnamedEntries:        catalog.Stats.UnnamedEntries,
		IncompleteFacts:       catalog.Stats.IncompleteFacts,
		SelfInteractions:      catalog.Stats.SelfInteractions,
		UnknownPartnerSamples: []string{},
	}

	// Check 1: facts whose partner has no catalog entry
	for _, fact := range catalog.Facts {
		partner := strings.ToLower(strings.TrimSpace(fact.DrugB))
		if _, found := slices.BinarySearch(catalog.Drugs, partner); !found {
			report.FactsWithUnknownDrug++
			if len(report.UnknownPartnerSamples) < maxUnknownPartnerSamples &&
				!slices.Contains(report.UnknownPartnerSamples, partner) {
				report.UnknownPartnerSamples = append(report.UnknownPartnerSamples, partner)
			}
		}
	}

	// Check 2: pairs stored once from each side
	type directed struct{ from, to string }
	seen := make(map[directed]struct{}, len(catalog.Facts))
	for _, fact := range catalog.Facts {
		seen[directed{
			from: strings.ToLower(strings.TrimSpace(fact.DrugA)),
			to:   strings.ToLower(strings.TrimSpace(fact.DrugB)),
		}] = struct{}{}
	}
	for d := range seen {
		if d.from < d.to {
			if _, ok := seen[directed{from: d.to, to: d.from}]; ok {
				report.BidirectionalPairs++
			}
		}
	}

	return report
}

// hasExcessiveRepetition checks for the same character repeated more than 10 times consecutively
func hasExcessiveRepetition(input string) bool {
	var prev rune
	run := 0
	for _, r := range input {
		if r == prev {
			run++
			if run > 10 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}
