package catalogparser

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/logging"
	"golang.org/x/text/encoding/ianaindex"
)

var (
	// ErrCatalogUnavailable is returned when the catalog document does not exist
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrCatalogMalformed is returned when the document cannot be parsed to the end
	ErrCatalogMalformed = errors.New("catalog malformed")
)

// drugEntry is one top-level <drug> element. Only the fields the engine uses are decoded.
type drugEntry struct {
	Name         string             `xml:"name"`
	Interactions []interactionEntry `xml:"drug-interactions>drug-interaction"`
}

type interactionEntry struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
}

// ParseCatalogFile opens the catalog at path and parses it.
func ParseCatalogFile(path string) (entities.Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return entities.Catalog{}, fmt.Errorf("%w: %s", ErrCatalogUnavailable, path)
		}
		return entities.Catalog{}, fmt.Errorf("%w: failed to open %s: %v", ErrCatalogUnavailable, path, err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logging.Warn("Failed to close catalog file", "error", err)
		}
	}()

	start := time.Now()
	catalog, err := ParseCatalog(bufio.NewReaderSize(file, 1<<20))
	if err != nil {
		return entities.Catalog{}, err
	}

	logging.Info("Catalog parsed",
		"path", path,
		"drugs", len(catalog.Drugs),
		"facts", len(catalog.Facts),
		"duration", time.Since(start).String(),
	)
	return catalog, nil
}

// ParseCatalog streams the catalog document entry by entry.
// Only <drug> elements that are direct children of the root are catalog entries;
// each one is decoded on its own and dropped before the next one is read.
// Any structural error discards everything parsed so far.
func ParseCatalog(r io.Reader) (entities.Catalog, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charsetReader

	var (
		names = make(map[string]struct{})
		facts []entities.InteractionFact
		stats   entities.ParseStats
		depth   int
		sawRoot bool
	)

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return entities.Catalog{}, fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
		}

		switch t := token.(type) {
		case xml.CharData:
			if depth == 0 && len(bytes.Trim(t, " \t\r\n\ufeff")) > 0 {
				return entities.Catalog{}, fmt.Errorf("%w: text outside the root element", ErrCatalogMalformed)
			}
		case xml.StartElement:
			if depth == 0 {
				sawRoot = true
			}
			if depth == 1 && t.Name.Local == "drug" {
				var entry drugEntry
				if err := decoder.DecodeElement(&entry, &t); err != nil {
					return entities.Catalog{}, fmt.Errorf("%w: drug entry %d: %v", ErrCatalogMalformed, stats.Entries+1, err)
				}
				stats.Entries++
				facts = appendEntry(entry, names, facts, &stats)
				continue
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}

	if !sawRoot {
		return entities.Catalog{}, fmt.Errorf("%w: no root element", ErrCatalogMalformed)
	}
	if depth != 0 {
		return entities.Catalog{}, fmt.Errorf("%w: unexpected end of document", ErrCatalogMalformed)
	}

	drugs := make([]string, 0, len(names))
	for name := range names {
		drugs = append(drugs, name)
	}
	slices.Sort(drugs)

	return entities.Catalog{Drugs: drugs, Facts: facts, Stats: stats}, nil
}

// appendEntry registers the entry's name and appends its usable interactions
func appendEntry(entry drugEntry, names map[string]struct{}, facts []entities.InteractionFact, stats *entities.ParseStats) []entities.InteractionFact {
	drugName := strings.TrimSpace(entry.Name)
	if drugName == "" {
		stats.UnnamedEntries++
		return facts
	}

	key := strings.ToLower(drugName)
	if _, exists := names[key]; exists {
		stats.DuplicateNames++
	}
	names[key] = struct{}{}

	for _, interaction := range entry.Interactions {
		partner := strings.TrimSpace(interaction.Name)
		description := strings.TrimSpace(interaction.Description)
		if partner == "" || description == "" {
			stats.IncompleteFacts++
			continue
		}
		if strings.EqualFold(partner, drugName) {
			stats.SelfInteractions++
			continue
		}
		facts = append(facts, entities.InteractionFact{
			DrugA:       drugName,
			DrugB:       partner,
			Description: description,
		})
	}

	return facts
}

// charsetReader decodes documents whose prolog declares a non UTF-8 encoding
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := ianaindex.IANA.Encoding(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", label, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported charset %q", label)
	}
	return enc.NewDecoder().Reader(input), nil
}
