package entities

// InteractionFact is one interaction listed by a catalog entry.
// DrugA is the entry that listed DrugB as a partner; both keep the catalog spelling.
type InteractionFact struct {
	DrugA       string `json:"drugA"`
	DrugB       string `json:"drugB"`
	Description string `json:"description"`
}
