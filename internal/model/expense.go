package model

import (
	"time"

	"xpay/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WorkflowType enum constants
const (
	WorkflowTypeTravel  = "travel"
	WorkflowTypeMonthly = "monthly"
)

// ExpenseReport represents one submitted expense claim moving through the
// approval pipeline. Status is the single source of truth for approval
// progress; the legacy boolean flags are derived from it on the way out.
type ExpenseReport struct {
	ID     uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // Immutable after creation
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	WorkflowType string `gorm:"type:varchar(50);not null" json:"workflow_type"`
	Date         string `gorm:"type:varchar(10);not null;index" json:"date"` // YYYY-MM-DD; month bucket = first 7 chars
	PlaceVisited string `gorm:"type:varchar(255)" json:"place_visited"`

	Items []ExpenseItem `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"items"`

	Status            workflow.Status `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"status"`
	AccountantComment string          `gorm:"type:text" json:"accountant_comment"`
	FinalComment      string          `gorm:"type:text" json:"final_comment"`

	// Optimistic concurrency token, checked and bumped on status writes
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ExpenseItem is one named amount line on a report (fuel, fare, food...).
// All record shapes are normalized into this representation on submission.
type ExpenseItem struct {
	ID       uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID uuid.UUID       `gorm:"type:uuid;not null;index" json:"report_id"`
	Category string          `gorm:"type:varchar(50);not null" json:"category"`
	Amount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"amount"`
}

// ToRecord maps the stored entity into the in-memory shape the workflow
// engine operates on, canonicalizing the status on the way.
func (r *ExpenseReport) ToRecord() workflow.Record {
	items := make([]workflow.LineItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, workflow.LineItem{Category: it.Category, Amount: it.Amount})
	}
	return workflow.Record{
		ID:           r.ID.String(),
		UserID:       r.UserID.String(),
		WorkflowType: r.WorkflowType,
		Date:         r.Date,
		PlaceVisited: r.PlaceVisited,
		Status:       workflow.Canonical(string(r.Status)),
		Items:        items,
	}
}
