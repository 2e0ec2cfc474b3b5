package model

// DetectedPattern is an inferred, not-yet-declared recurring obligation
// discovered by mining historical transactions. Patterns are transient:
// the caller decides whether to materialize one into a RecurringTemplate.
type DetectedPattern struct {
	PropertyID     string
	Category       string
	Description    string
	Frequency      Frequency
	TransactionIDs []string
	Amount         float64
	Confidence     float64
}
