package entities

// ResolvedInteraction is one interacting pair returned to callers.
// Drug1 and Drug2 are the normalized query names, in the order they were submitted.
type ResolvedInteraction struct {
	Drug1                string   `json:"drug1"`
	Drug2                string   `json:"drug2"`
	Severity             Severity `json:"severity"`
	SeverityLocalized    string   `json:"severity_localized"`
	Description          string   `json:"description"`
	DescriptionLocalized string   `json:"description_localized"`
}
