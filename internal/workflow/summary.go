package workflow

import "github.com/shopspring/decimal"

// EmployeeSummary holds the three per-status totals shown on the
// employee's own dashboard. Manager-finalized states fold into the
// nearest employee-facing bucket: FINAL_APPROVED counts as approved,
// REJECTED_BY_MANAGER as rejected.
type EmployeeSummary struct {
	ApprovedTotal decimal.Decimal
	RejectedTotal decimal.Decimal
	PendingTotal  decimal.Decimal
}

// SummarizeEmployee computes the employee summary over the given
// records. Callers are expected to have scoped the records to one
// user and month already; the summary is recomputed from scratch on
// every call.
func SummarizeEmployee(records []Record) EmployeeSummary {
	s := EmployeeSummary{
		ApprovedTotal: decimal.Zero,
		RejectedTotal: decimal.Zero,
		PendingTotal:  decimal.Zero,
	}
	for _, r := range records {
		total := Total(r)
		switch r.Status {
		case StatusApproved, StatusFinalApproved:
			s.ApprovedTotal = s.ApprovedTotal.Add(total)
		case StatusRejected, StatusRejectedByManager:
			s.RejectedTotal = s.RejectedTotal.Add(total)
		default:
			s.PendingTotal = s.PendingTotal.Add(total)
		}
	}
	return s
}

// ManagerSummary holds the month-level figures on the manager's
// dashboard. REJECTED_BY_MANAGER folds into the rejected bucket so that
// GrandTotal always equals the sum of the other four buckets.
type ManagerSummary struct {
	GrandTotal         decimal.Decimal
	ApprovedTotal      decimal.Decimal
	RejectedTotal      decimal.Decimal
	PendingTotal       decimal.Decimal
	FinalApprovedTotal decimal.Decimal
}

// SummarizeManager computes the manager summary over the given records
func SummarizeManager(records []Record) ManagerSummary {
	s := ManagerSummary{
		GrandTotal:         decimal.Zero,
		ApprovedTotal:      decimal.Zero,
		RejectedTotal:      decimal.Zero,
		PendingTotal:       decimal.Zero,
		FinalApprovedTotal: decimal.Zero,
	}
	for _, r := range records {
		total := Total(r)
		s.GrandTotal = s.GrandTotal.Add(total)
		switch r.Status {
		case StatusApproved:
			s.ApprovedTotal = s.ApprovedTotal.Add(total)
		case StatusRejected, StatusRejectedByManager:
			s.RejectedTotal = s.RejectedTotal.Add(total)
		case StatusFinalApproved:
			s.FinalApprovedTotal = s.FinalApprovedTotal.Add(total)
		default:
			s.PendingTotal = s.PendingTotal.Add(total)
		}
	}
	return s
}
