package workflow

import "strings"

// Status represents the approval state of an expense report.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusApproved          Status = "APPROVED"
	StatusRejected          Status = "REJECTED"
	StatusFinalApproved     Status = "FINAL_APPROVED"
	StatusRejectedByManager Status = "REJECTED_BY_MANAGER"
)

var validStatuses = map[Status]bool{
	StatusPending:           true,
	StatusApproved:          true,
	StatusRejected:          true,
	StatusFinalApproved:     true,
	StatusRejectedByManager: true,
}

var terminalStatuses = map[Status]bool{
	StatusFinalApproved:     true,
	StatusRejectedByManager: true,
}

// String returns the string representation of the status
func (s Status) String() string {
	return string(s)
}

// IsValid returns true if the status is one of the five canonical states
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// IsTerminal returns true if no further transitions are allowed from the status
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// ApprovedByAccountant reports whether the record has passed the accountant stage.
// This is a derived view; the status string is the single source of truth.
func (s Status) ApprovedByAccountant() bool {
	return s == StatusApproved || s == StatusFinalApproved || s == StatusRejectedByManager
}

// ApprovedByManager reports whether the record has received final sign-off
func (s Status) ApprovedByManager() bool {
	return s == StatusFinalApproved
}

// legacy status spellings observed across stored records
var legacyStatuses = map[string]Status{
	"pending":             StatusPending,
	"approved":            StatusApproved,
	"accountant-approved": StatusApproved,
	"rejected":            StatusRejected,
	"final_approved":      StatusFinalApproved,
	"final-approved":      StatusFinalApproved,
	"finalapproved":       StatusFinalApproved,
	"manager-approved":    StatusFinalApproved,
	"rejected_by_manager": StatusRejectedByManager,
	"rejected-by-manager": StatusRejectedByManager,
	"rejectedbymanager":   StatusRejectedByManager,
}

// Canonical maps a raw stored status value onto the canonical enum.
// Unknown or empty values fall back to PENDING, matching how the record
// would have rendered before any approval action touched it.
func Canonical(raw string) Status {
	if s := Status(raw); s.IsValid() {
		return s
	}
	if s, ok := legacyStatuses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return StatusPending
}

// FromFlags derives the canonical status from the legacy boolean pair
// kept on older records instead of a status string.
func FromFlags(approvedByAccountant, approvedByManager bool) Status {
	switch {
	case approvedByManager:
		return StatusFinalApproved
	case approvedByAccountant:
		return StatusApproved
	default:
		return StatusPending
	}
}
