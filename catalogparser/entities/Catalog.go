package entities

// Catalog is the result of a full catalog parse.
type Catalog struct {
	Drugs []string          `json:"drugs"` // sorted, deduplicated, lower-cased
	Facts []InteractionFact `json:"facts"` // catalog order
	Stats ParseStats        `json:"stats"`
}

// ParseStats counts what the parser saw and what it had to drop
type ParseStats struct {
	Entries          int `json:"entries"`
	UnnamedEntries   int `json:"unnamedEntries"`
	DuplicateNames   int `json:"duplicateNames"`
	IncompleteFacts  int `json:"incompleteFacts"`
	SelfInteractions int `json:"selfInteractions"`
}
