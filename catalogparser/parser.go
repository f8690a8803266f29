// Package catalogparser reads the drug catalog document into drugs and interaction facts.
package catalogparser

import (
	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/interfaces"
)

// Compile-time check to ensure CatalogParser implements Parser interface
var _ interfaces.Parser = (*CatalogParser)(nil)

// CatalogParser implements the Parser interface
type CatalogParser struct{}

// NewCatalogParser creates a new CatalogParser instance
func NewCatalogParser() *CatalogParser {
	return &CatalogParser{}
}

// ParseCatalog implements the Parser interface
func (p *CatalogParser) ParseCatalog(path string) (entities.Catalog, error) {
	return ParseCatalogFile(path)
}
