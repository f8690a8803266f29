package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"golang.org/x/text/language"
)

var (
	// ErrClassificationUnavailable is returned when the collaborator cannot be reached or fails
	ErrClassificationUnavailable = errors.New("classification unavailable")
	// ErrMalformedResponse is returned when no JSON object can be read from the reply
	ErrMalformedResponse = errors.New("malformed classification response")
	// ErrInvalidResponse is returned when the object lacks a required field or has an unknown severity
	ErrInvalidResponse = errors.New("invalid classification response")
)

// ExtractJSONObject returns the first well-formed JSON object embedded in text.
// Replies may surround the object with prose or code fences.
func ExtractJSONObject(text string) (map[string]json.RawMessage, error) {
	for offset := 0; offset < len(text); {
		i := strings.IndexByte(text[offset:], '{')
		if i < 0 {
			break
		}
		start := offset + i

		var obj map[string]json.RawMessage
		decoder := json.NewDecoder(strings.NewReader(text[start:]))
		if err := decoder.Decode(&obj); err == nil {
			return obj, nil
		}
		offset = start + 1
	}
	return nil, fmt.Errorf("%w: no JSON object found in reply", ErrMalformedResponse)
}

// ParseReply reads and validates a classification from the collaborator's reply.
// The explanation may be under "explanation" or "explanation_<lang>".
func ParseReply(text string, lang language.Tag) (entities.Classification, error) {
	obj, err := ExtractJSONObject(text)
	if err != nil {
		return entities.Classification{}, err
	}

	severityRaw, ok := obj["severity"]
	if !ok {
		return entities.Classification{}, fmt.Errorf("%w: missing severity", ErrInvalidResponse)
	}
	var severityName string
	if err := json.Unmarshal(severityRaw, &severityName); err != nil {
		return entities.Classification{}, fmt.Errorf("%w: severity is not a string", ErrInvalidResponse)
	}
	severity, err := entities.ParseSeverity(severityName)
	if err != nil {
		return entities.Classification{}, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	explanationRaw, ok := obj["explanation"]
	if !ok {
		base, _ := lang.Base()
		explanationRaw, ok = obj["explanation_"+base.String()]
	}
	if !ok {
		return entities.Classification{}, fmt.Errorf("%w: missing explanation", ErrInvalidResponse)
	}
	var explanation string
	if err := json.Unmarshal(explanationRaw, &explanation); err != nil {
		return entities.Classification{}, fmt.Errorf("%w: explanation is not a string", ErrInvalidResponse)
	}
	if strings.TrimSpace(explanation) == "" {
		return entities.Classification{}, fmt.Errorf("%w: empty explanation", ErrInvalidResponse)
	}

	return entities.Classification{Severity: severity, Explanation: strings.TrimSpace(explanation)}, nil
}

// failureKind is the metrics label for a classification error
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	case errors.Is(err, ErrInvalidResponse):
		return "invalid"
	case errors.Is(err, ErrClassificationUnavailable):
		return "unavailable"
	default:
		return "canceled"
	}
}
