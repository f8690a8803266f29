package entities

// Classification is the severity tier and localized explanation of one fact.
type Classification struct {
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
}
