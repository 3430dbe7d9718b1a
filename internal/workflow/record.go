package workflow

import "github.com/shopspring/decimal"

// LineItem is one amount-bearing entry on an expense report.
// Records submitted with legacy named amount fields are folded into
// line items before they reach the engine, so this is the only shape
// the engine ever sees.
type LineItem struct {
	Category string
	Amount   decimal.Decimal
}

// Record is the in-memory view of an expense report the engine operates on.
// It carries no persistence concerns; callers map their stored entities
// into Records before invoking any engine function.
type Record struct {
	ID           string
	UserID       string
	WorkflowType string
	Date         string // YYYY-MM-DD
	PlaceVisited string
	Status       Status
	Items        []LineItem
}

// Month returns the YYYY-MM bucket of the record, or "" when the date
// is missing or too short to carry one.
func (r Record) Month() string {
	if len(r.Date) < 7 {
		return ""
	}
	return r.Date[:7]
}
