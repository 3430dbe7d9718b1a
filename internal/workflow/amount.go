package workflow

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount coerces a raw form value into a non-negative amount.
// Empty, non-numeric, and negative input all contribute zero so a bad
// field never blocks aggregation or rendering.
func ParseAmount(raw string) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil || amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// Total computes the monetary total of a record: the sum of its line
// item amounts. Negative amounts (which normalization should have
// zeroed already) are skipped so the result is always >= 0. A record
// with no items totals zero.
func Total(r Record) decimal.Decimal {
	total := decimal.Zero
	for _, item := range r.Items {
		if item.Amount.IsNegative() {
			continue
		}
		total = total.Add(item.Amount)
	}
	return total
}

// SumTotals computes the combined total of a set of records
func SumTotals(records []Record) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(Total(r))
	}
	return total
}

// legacyAmountFields lists the named amount columns older records were
// submitted with, in the order they appeared on the form.
var legacyAmountFields = []string{
	"fuel",
	"fare",
	"boarding",
	"food",
	"localConveyance",
	"misc",
	"advanceCash",
	"monthlyConveyance",
	"monthlyPhone",
}

// NormalizeLegacyFields folds a flat map of named amount fields into
// canonical line items. Fields that are absent or parse to zero are
// dropped. This is the single normalization point for the old flat
// record shape; nothing downstream handles it.
func NormalizeLegacyFields(fields map[string]string) []LineItem {
	items := make([]LineItem, 0, len(fields))
	for _, name := range legacyAmountFields {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		amount := ParseAmount(raw)
		if amount.IsZero() {
			continue
		}
		items = append(items, LineItem{Category: name, Amount: amount})
	}
	return items
}
