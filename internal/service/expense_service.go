package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"xpay/internal/model"
	"xpay/internal/repository"
	"xpay/internal/workflow"

	"github.com/google/uuid"
)

// --- DTOs ---

type LineItemInput struct {
	Category string `json:"category" binding:"required"`
	Amount   string `json:"amount"` // Decimal string; malformed values coerce to 0
}

// SubmitExpenseRequest accepts both the canonical line-item shape and the
// legacy named amount fields; both are folded into items on submission.
type SubmitExpenseRequest struct {
	WorkflowType string `json:"workflow_type" binding:"required"`
	Date         string `json:"date" binding:"required"` // YYYY-MM-DD
	PlaceVisited string `json:"place_visited"`

	Items []LineItemInput `json:"items"`

	// Legacy flat fields
	Fuel              string `json:"fuel"`
	Fare              string `json:"fare"`
	Boarding          string `json:"boarding"`
	Food              string `json:"food"`
	LocalConveyance   string `json:"localConveyance"`
	Misc              string `json:"misc"`
	AdvanceCash       string `json:"advanceCash"`
	MonthlyConveyance string `json:"monthlyConveyance"`
	MonthlyPhone      string `json:"monthlyPhone"`
}

type ExpenseItemResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type ExpenseResponse struct {
	ID                   string                `json:"id"`
	UserID               string                `json:"user_id"`
	EmployeeName         string                `json:"employee_name,omitempty"`
	WorkflowType         string                `json:"workflow_type"`
	Date                 string                `json:"date"`
	PlaceVisited         string                `json:"place_visited,omitempty"`
	Items                []ExpenseItemResponse `json:"items"`
	Total                string                `json:"total"` // Recomputed, never persisted
	Status               string                `json:"status"`
	ApprovedByAccountant bool                  `json:"approved_by_accountant"`
	ApprovedByManager    bool                  `json:"approved_by_manager"`
	AccountantComment    string                `json:"accountant_comment,omitempty"`
	FinalComment         string                `json:"final_comment,omitempty"`
	Version              int                   `json:"version"`
	CreatedAt            string                `json:"created_at"`
}

type EmployeeSummaryResponse struct {
	ApprovedTotal string `json:"approved_total"`
	RejectedTotal string `json:"rejected_total"`
	PendingTotal  string `json:"pending_total"`
}

type ManagerSummaryResponse struct {
	GrandTotal         string `json:"grand_total"`
	ApprovedTotal      string `json:"approved_total"`
	RejectedTotal      string `json:"rejected_total"`
	PendingTotal       string `json:"pending_total"`
	FinalApprovedTotal string `json:"final_approved_total"`
}

// ViewResponse is the role-scoped dashboard payload
type ViewResponse struct {
	Role            string                   `json:"role"`
	Month           string                   `json:"month"`
	Records         []ExpenseResponse        `json:"records"`
	EmployeeSummary *EmployeeSummaryResponse `json:"employee_summary,omitempty"`
	ManagerSummary  *ManagerSummaryResponse  `json:"manager_summary,omitempty"`
}

// --- Interface ---

type ExpenseService interface {
	Submit(ctx context.Context, userID string, req SubmitExpenseRequest) (ExpenseResponse, error)
	GetByID(ctx context.Context, id string) (ExpenseResponse, error)
	GetView(ctx context.Context, actor workflow.Actor, userID, month string, pendingOnly bool) (ViewResponse, error)
	Delete(ctx context.Context, id string, actorID string) error
}

type expenseService struct {
	expenseRepo repository.ExpenseRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewExpenseService(
	expenseRepo repository.ExpenseRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *expenseService) Submit(ctx context.Context, userID string, req SubmitExpenseRequest) (ExpenseResponse, error) {
	submitterID, err := uuid.Parse(userID)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid user id: %w", err)
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid date, expected YYYY-MM-DD: %w", err)
	}

	items := normalizeItems(req)

	report := model.ExpenseReport{
		UserID:       submitterID,
		WorkflowType: req.WorkflowType,
		Date:         req.Date,
		PlaceVisited: req.PlaceVisited,
		Status:       workflow.StatusPending,
		Version:      1,
	}
	for _, it := range items {
		report.Items = append(report.Items, model.ExpenseItem{
			Category: it.Category,
			Amount:   it.Amount,
		})
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.expenseRepo.Create(txCtx, &report); createErr != nil {
			return fmt.Errorf("failed to create expense report: %w", createErr)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"workflow_type": req.WorkflowType,
			"date":          req.Date,
			"total":         workflow.Total(report.ToRecord()).StringFixed(2),
			"item_count":    len(report.Items),
		})
		audit := &model.AuditLog{
			UserID:     &submitterID,
			Action:     model.ActionSubmitExpense,
			EntityID:   report.ID.String(),
			EntityName: req.WorkflowType,
			Details:    string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		return nil
	})

	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(report), nil
}

func (s *expenseService) GetByID(ctx context.Context, id string) (ExpenseResponse, error) {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid expense id: %w", err)
	}

	report, err := s.expenseRepo.FindByID(ctx, reportID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	return toExpenseResponse(*report), nil
}

// GetView pulls the full collection and lets the workflow engine select
// and summarize for the caller's role. Record volumes are small; the
// engine recomputes everything from scratch per request.
func (s *expenseService) GetView(ctx context.Context, actor workflow.Actor, userID, month string, pendingOnly bool) (ViewResponse, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	reports, err := s.expenseRepo.List(ctx)
	if err != nil {
		return ViewResponse{}, fmt.Errorf("failed to fetch expense reports: %w", err)
	}

	byID := make(map[string]*model.ExpenseReport, len(reports))
	records := make([]workflow.Record, 0, len(reports))
	for i := range reports {
		record := reports[i].ToRecord()
		byID[record.ID] = &reports[i]
		records = append(records, record)
	}

	view := ViewResponse{Role: actor.String(), Month: month}
	scoped := workflow.FilterByMonth(records, month)

	switch actor {
	case workflow.ActorEmployee:
		own := workflow.FilterByUser(scoped, userID)
		view.Records = toResponses(own, byID)
		summary := workflow.SummarizeEmployee(own)
		view.EmployeeSummary = &EmployeeSummaryResponse{
			ApprovedTotal: summary.ApprovedTotal.StringFixed(2),
			RejectedTotal: summary.RejectedTotal.StringFixed(2),
			PendingTotal:  summary.PendingTotal.StringFixed(2),
		}
	case workflow.ActorAccountant:
		visible := scoped
		if pendingOnly {
			visible = workflow.FilterByStatus(scoped, workflow.StatusPending)
		}
		view.Records = toResponses(visible, byID)
	case workflow.ActorManager:
		view.Records = toResponses(workflow.ReadyForFinal(scoped), byID)
		summary := workflow.SummarizeManager(scoped)
		view.ManagerSummary = &ManagerSummaryResponse{
			GrandTotal:         summary.GrandTotal.StringFixed(2),
			ApprovedTotal:      summary.ApprovedTotal.StringFixed(2),
			RejectedTotal:      summary.RejectedTotal.StringFixed(2),
			PendingTotal:       summary.PendingTotal.StringFixed(2),
			FinalApprovedTotal: summary.FinalApprovedTotal.StringFixed(2),
		}
	default:
		return ViewResponse{}, fmt.Errorf("unknown role: %s", actor)
	}

	return view, nil
}

func (s *expenseService) Delete(ctx context.Context, id string, actorID string) error {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid expense id: %w", err)
	}

	var deleterID *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		deleterID = &parsed
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if delErr := s.expenseRepo.Delete(txCtx, reportID); delErr != nil {
			return delErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"expense_id": id,
		})
		audit := &model.AuditLog{
			UserID:   deleterID,
			Action:   model.ActionDeleteExpense,
			EntityID: id,
			Details:  string(details),
		}
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// --- Helpers ---

// normalizeItems is the single point where both submission shapes
// collapse into canonical line items.
func normalizeItems(req SubmitExpenseRequest) []workflow.LineItem {
	items := workflow.NormalizeLegacyFields(map[string]string{
		"fuel":              req.Fuel,
		"fare":              req.Fare,
		"boarding":          req.Boarding,
		"food":              req.Food,
		"localConveyance":   req.LocalConveyance,
		"misc":              req.Misc,
		"advanceCash":       req.AdvanceCash,
		"monthlyConveyance": req.MonthlyConveyance,
		"monthlyPhone":      req.MonthlyPhone,
	})
	for _, it := range req.Items {
		amount := workflow.ParseAmount(it.Amount)
		if amount.IsZero() {
			continue
		}
		items = append(items, workflow.LineItem{Category: it.Category, Amount: amount})
	}
	return items
}

func toResponses(records []workflow.Record, byID map[string]*model.ExpenseReport) []ExpenseResponse {
	out := make([]ExpenseResponse, 0, len(records))
	for _, record := range records {
		if report, ok := byID[record.ID]; ok {
			out = append(out, toExpenseResponse(*report))
		}
	}
	return out
}

func toExpenseResponse(report model.ExpenseReport) ExpenseResponse {
	record := report.ToRecord()

	items := make([]ExpenseItemResponse, 0, len(report.Items))
	for _, it := range report.Items {
		items = append(items, ExpenseItemResponse{
			Category: it.Category,
			Amount:   it.Amount.StringFixed(2),
		})
	}

	resp := ExpenseResponse{
		ID:                   record.ID,
		UserID:               record.UserID,
		WorkflowType:         report.WorkflowType,
		Date:                 report.Date,
		PlaceVisited:         report.PlaceVisited,
		Items:                items,
		Total:                workflow.Total(record).StringFixed(2),
		Status:               record.Status.String(),
		ApprovedByAccountant: record.Status.ApprovedByAccountant(),
		ApprovedByManager:    record.Status.ApprovedByManager(),
		AccountantComment:    report.AccountantComment,
		FinalComment:         report.FinalComment,
		Version:              report.Version,
		CreatedAt:            report.CreatedAt.Format(time.RFC3339),
	}
	if report.User != nil {
		resp.EmployeeName = report.User.Username
	}
	return resp
}
