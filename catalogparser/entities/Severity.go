package entities

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Severity is a clinical interaction tier. Higher values are more severe.
type Severity int

const (
	SeverityMinor Severity = iota + 1
	SeverityModerate
	SeverityMajor
	SeverityContraindicated
)

var severityNames = map[Severity]string{
	SeverityMinor:           "Minor",
	SeverityModerate:        "Moderate",
	SeverityMajor:           "Major",
	SeverityContraindicated: "Contraindicated",
}

// severityLabels holds the display label of each tier per language
var severityLabels = map[language.Base]map[Severity]string{
	baseOf(language.Thai): {
		SeverityContraindicated: "ห้ามใช้ร่วมกัน",
		SeverityMajor:           "รุนแรงมาก",
		SeverityModerate:        "ปานกลาง",
		SeverityMinor:           "เล็กน้อย",
	},
	baseOf(language.English): {
		SeverityContraindicated: "Contraindicated",
		SeverityMajor:           "Major",
		SeverityModerate:        "Moderate",
		SeverityMinor:           "Minor",
	},
}

func baseOf(tag language.Tag) language.Base {
	base, _ := tag.Base()
	return base
}

// Severities returns every tier, most severe first.
func Severities() []Severity {
	return []Severity{SeverityContraindicated, SeverityMajor, SeverityModerate, SeverityMinor}
}

// ParseSeverity maps a tier name (case-insensitive) to its Severity.
func ParseSeverity(s string) (Severity, error) {
	s = strings.TrimSpace(s)
	for sev, name := range severityNames {
		if strings.EqualFold(name, s) {
			return sev, nil
		}
	}
	return 0, fmt.Errorf("unknown severity %q", s)
}

// IsValid reports whether s is one of the four tiers.
func (s Severity) IsValid() bool {
	_, ok := severityNames[s]
	return ok
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Severity(%d)", int(s))
}

// Label returns the display label of the tier in the given language,
// falling back to the English tier name.
func (s Severity) Label(tag language.Tag) string {
	base, _ := tag.Base()
	if labels, ok := severityLabels[base]; ok {
		if label, ok := labels[s]; ok {
			return label
		}
	}
	return s.String()
}

func (s Severity) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	parsed, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
