package service

import (
	"context"
	"testing"

	"xpay/internal/model"
	"xpay/internal/workflow"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newExpenseFixture() (ExpenseService, *fakeExpenseRepo, *fakeAuditRepo) {
	expenseRepo := newFakeExpenseRepo()
	auditRepo := &fakeAuditRepo{}
	svc := NewExpenseService(expenseRepo, auditRepo, fakeTxManager{})
	return svc, expenseRepo, auditRepo
}

func TestSubmitNormalizesLegacyFields(t *testing.T) {
	svc, expenseRepo, auditRepo := newExpenseFixture()
	userID := uuid.NewString()

	resp, err := svc.Submit(context.Background(), userID, SubmitExpenseRequest{
		WorkflowType: model.WorkflowTypeTravel,
		Date:         "2025-01-15",
		PlaceVisited: "Bengaluru",
		Fuel:         "100",
		Food:         "50.50",
		Fare:         "abc",  // malformed, contributes nothing
		Misc:         "-10",  // negative, contributes nothing
		Boarding:     "0.00", // zero amounts are dropped
	})
	require.NoError(t, err)

	assert.Equal(t, "PENDING", resp.Status)
	assert.Equal(t, userID, resp.UserID)
	assert.Equal(t, "150.50", resp.Total)
	assert.Equal(t, 1, resp.Version)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "fuel", resp.Items[0].Category)
	assert.Equal(t, "food", resp.Items[1].Category)

	require.Len(t, expenseRepo.order, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionSubmitExpense, auditRepo.entries[0].Action)
}

func TestSubmitAcceptsExplicitLineItems(t *testing.T) {
	svc, _, _ := newExpenseFixture()

	resp, err := svc.Submit(context.Background(), uuid.NewString(), SubmitExpenseRequest{
		WorkflowType: model.WorkflowTypeMonthly,
		Date:         "2025-03-01",
		Items: []LineItemInput{
			{Category: "monthlyConveyance", Amount: "1200"},
			{Category: "monthlyPhone", Amount: "499"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "1699.00", resp.Total)
	require.Len(t, resp.Items, 2)
}

func TestSubmitRejectsBadDate(t *testing.T) {
	svc, expenseRepo, _ := newExpenseFixture()

	_, err := svc.Submit(context.Background(), uuid.NewString(), SubmitExpenseRequest{
		WorkflowType: model.WorkflowTypeTravel,
		Date:         "15-01-2025",
	})
	require.Error(t, err)
	assert.Empty(t, expenseRepo.order)
}

func TestSubmitRejectsBadUserID(t *testing.T) {
	svc, _, _ := newExpenseFixture()

	_, err := svc.Submit(context.Background(), "not-a-uuid", SubmitExpenseRequest{
		WorkflowType: model.WorkflowTypeTravel,
		Date:         "2025-01-15",
	})
	require.Error(t, err)
}

func TestGetViewEmployeeSeesOnlyOwnRecords(t *testing.T) {
	svc, expenseRepo, _ := newExpenseFixture()

	mine := newReport(workflow.StatusPending)
	mine.Date = "2025-01-10"
	theirs := newReport(workflow.StatusPending)
	theirs.Date = "2025-01-12"
	otherMonth := newReport(workflow.StatusPending)
	otherMonth.UserID = mine.UserID
	otherMonth.Date = "2025-02-01"
	expenseRepo.add(mine)
	expenseRepo.add(theirs)
	expenseRepo.add(otherMonth)

	view, err := svc.GetView(context.Background(), workflow.ActorEmployee, mine.UserID.String(), "2025-01", false)
	require.NoError(t, err)

	assert.Equal(t, "employee", view.Role)
	assert.Equal(t, "2025-01", view.Month)
	require.Len(t, view.Records, 1)
	assert.Equal(t, mine.ID.String(), view.Records[0].ID)

	require.NotNil(t, view.EmployeeSummary)
	assert.Equal(t, "150.00", view.EmployeeSummary.PendingTotal)
	assert.Equal(t, "0.00", view.EmployeeSummary.ApprovedTotal)
	assert.Nil(t, view.ManagerSummary)
}

func TestGetViewAccountantPendingOnly(t *testing.T) {
	svc, expenseRepo, _ := newExpenseFixture()

	pending := newReport(workflow.StatusPending)
	pending.Date = "2025-01-10"
	approved := newReport(workflow.StatusApproved)
	approved.Date = "2025-01-11"
	expenseRepo.add(pending)
	expenseRepo.add(approved)

	all, err := svc.GetView(context.Background(), workflow.ActorAccountant, uuid.NewString(), "2025-01", false)
	require.NoError(t, err)
	assert.Len(t, all.Records, 2)

	filtered, err := svc.GetView(context.Background(), workflow.ActorAccountant, uuid.NewString(), "2025-01", true)
	require.NoError(t, err)
	require.Len(t, filtered.Records, 1)
	assert.Equal(t, pending.ID.String(), filtered.Records[0].ID)
}

func TestGetViewManagerSeesApprovalQueueAndSummary(t *testing.T) {
	svc, expenseRepo, _ := newExpenseFixture()

	pending := newReport(workflow.StatusPending)
	pending.Date = "2025-01-10"
	approved := newReport(workflow.StatusApproved)
	approved.Date = "2025-01-11"
	finalized := newReport(workflow.StatusFinalApproved)
	finalized.Date = "2025-01-12"
	expenseRepo.add(pending)
	expenseRepo.add(approved)
	expenseRepo.add(finalized)

	view, err := svc.GetView(context.Background(), workflow.ActorManager, uuid.NewString(), "2025-01", false)
	require.NoError(t, err)

	// Only accountant-approved reports wait on the manager
	require.Len(t, view.Records, 1)
	assert.Equal(t, approved.ID.String(), view.Records[0].ID)

	require.NotNil(t, view.ManagerSummary)
	assert.Equal(t, "450.00", view.ManagerSummary.GrandTotal)
	assert.Equal(t, "150.00", view.ManagerSummary.ApprovedTotal)
	assert.Equal(t, "150.00", view.ManagerSummary.PendingTotal)
	assert.Equal(t, "150.00", view.ManagerSummary.FinalApprovedTotal)
	assert.Equal(t, "0.00", view.ManagerSummary.RejectedTotal)
}

func TestDeleteWritesAuditEntry(t *testing.T) {
	svc, expenseRepo, auditRepo := newExpenseFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)

	err := svc.Delete(context.Background(), report.ID.String(), uuid.NewString())
	require.NoError(t, err)

	assert.Len(t, expenseRepo.deleted, 1)
	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionDeleteExpense, auditRepo.entries[0].Action)
}

func TestDeleteUnknownReport(t *testing.T) {
	svc, _, _ := newExpenseFixture()

	err := svc.Delete(context.Background(), uuid.NewString(), uuid.NewString())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
