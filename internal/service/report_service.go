package service

import (
	"context"
	"fmt"
	"time"

	"xpay/internal/repository"
	"xpay/internal/workflow"
)

// --- DTOs ---

// UserMonthGroupResponse is one (employee, month) bucket in the
// manager's aggregate report.
type UserMonthGroupResponse struct {
	UserID       string `json:"user_id"`
	EmployeeName string `json:"employee_name"`
	Month        string `json:"month"`
	RecordCount  int    `json:"record_count"`
	Total        string `json:"total"`
}

// --- Interface ---

type ReportService interface {
	EmployeeSummary(ctx context.Context, userID, month string) (EmployeeSummaryResponse, error)
	ManagerSummary(ctx context.Context, month string) (ManagerSummaryResponse, error)
	MonthlyBreakdown(ctx context.Context, month string) ([]UserMonthGroupResponse, error)
}

type reportService struct {
	expenseRepo repository.ExpenseRepository
	userRepo    repository.UserRepository
}

func NewReportService(expenseRepo repository.ExpenseRepository, userRepo repository.UserRepository) ReportService {
	return &reportService{expenseRepo: expenseRepo, userRepo: userRepo}
}

// --- Implementation ---

func (s *reportService) EmployeeSummary(ctx context.Context, userID, month string) (EmployeeSummaryResponse, error) {
	records, err := s.monthRecords(ctx, month)
	if err != nil {
		return EmployeeSummaryResponse{}, err
	}

	summary := workflow.SummarizeEmployee(workflow.FilterByUser(records, userID))
	return EmployeeSummaryResponse{
		ApprovedTotal: summary.ApprovedTotal.StringFixed(2),
		RejectedTotal: summary.RejectedTotal.StringFixed(2),
		PendingTotal:  summary.PendingTotal.StringFixed(2),
	}, nil
}

func (s *reportService) ManagerSummary(ctx context.Context, month string) (ManagerSummaryResponse, error) {
	records, err := s.monthRecords(ctx, month)
	if err != nil {
		return ManagerSummaryResponse{}, err
	}

	summary := workflow.SummarizeManager(records)
	return ManagerSummaryResponse{
		GrandTotal:         summary.GrandTotal.StringFixed(2),
		ApprovedTotal:      summary.ApprovedTotal.StringFixed(2),
		RejectedTotal:      summary.RejectedTotal.StringFixed(2),
		PendingTotal:       summary.PendingTotal.StringFixed(2),
		FinalApprovedTotal: summary.FinalApprovedTotal.StringFixed(2),
	}, nil
}

// MonthlyBreakdown groups a month's records per employee. An empty
// month argument breaks the whole collection down by (employee, month).
func (s *reportService) MonthlyBreakdown(ctx context.Context, month string) ([]UserMonthGroupResponse, error) {
	reports, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expense reports: %w", err)
	}

	records := make([]workflow.Record, 0, len(reports))
	for i := range reports {
		records = append(records, reports[i].ToRecord())
	}
	if month != "" {
		records = workflow.FilterByMonth(records, month)
	}

	names := make(map[string]string)
	if users, listErr := s.userRepo.ListAll(ctx); listErr == nil {
		for _, u := range users {
			names[u.ID.String()] = u.Username
		}
	}

	groups := workflow.GroupByUserAndMonth(records)
	out := make([]UserMonthGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, UserMonthGroupResponse{
			UserID:       g.Key.UserID,
			EmployeeName: names[g.Key.UserID],
			Month:        g.Key.Month,
			RecordCount:  len(g.Records),
			Total:        workflow.SumTotals(g.Records).StringFixed(2),
		})
	}
	return out, nil
}

func (s *reportService) monthRecords(ctx context.Context, month string) ([]workflow.Record, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	reports, err := s.expenseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expense reports: %w", err)
	}

	records := make([]workflow.Record, 0, len(reports))
	for i := range reports {
		records = append(records, reports[i].ToRecord())
	}
	return workflow.FilterByMonth(records, month), nil
}
