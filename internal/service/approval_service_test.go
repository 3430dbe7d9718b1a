package service

import (
	"context"
	"testing"
	"time"

	"xpay/internal/model"
	"xpay/internal/repository"
	"xpay/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- Fakes ---

type fakeExpenseRepo struct {
	order     []uuid.UUID
	reports   map[uuid.UUID]*model.ExpenseReport
	updates   []repository.StatusUpdate
	updateErr error
	deleted   []uuid.UUID
}

func newFakeExpenseRepo() *fakeExpenseRepo {
	return &fakeExpenseRepo{reports: make(map[uuid.UUID]*model.ExpenseReport)}
}

func (f *fakeExpenseRepo) add(report *model.ExpenseReport) {
	f.order = append(f.order, report.ID)
	f.reports[report.ID] = report
}

func (f *fakeExpenseRepo) Create(_ context.Context, report *model.ExpenseReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	f.add(report)
	return nil
}

func (f *fakeExpenseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ExpenseReport, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return report, nil
}

func (f *fakeExpenseRepo) List(_ context.Context) ([]model.ExpenseReport, error) {
	out := make([]model.ExpenseReport, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, *f.reports[id])
	}
	return out, nil
}

func (f *fakeExpenseRepo) UpdateStatus(_ context.Context, id uuid.UUID, update repository.StatusUpdate) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	report, ok := f.reports[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if report.Version != update.Version {
		return repository.ErrVersionConflict
	}

	report.Status = update.Status
	report.Version++
	if update.Stage == workflow.ActorManager {
		report.FinalComment = update.Comment
	} else {
		report.AccountantComment = update.Comment
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeExpenseRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.reports[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.reports, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAuditRepo struct {
	entries []*model.AuditLog
	logErr  error
}

func (f *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if f.logErr != nil {
		return f.logErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) List(_ context.Context, _ string, _, _ int) ([]model.AuditLog, int64, error) {
	out := make([]model.AuditLog, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Helpers ---

func newReport(status workflow.Status) *model.ExpenseReport {
	return &model.ExpenseReport{
		ID:           uuid.New(),
		UserID:       uuid.New(),
		WorkflowType: model.WorkflowTypeTravel,
		Date:         "2025-01-15",
		Status:       status,
		Version:      1,
		Items: []model.ExpenseItem{
			{Category: "fuel", Amount: decimal.NewFromInt(100)},
			{Category: "food", Amount: decimal.NewFromInt(50)},
		},
		CreatedAt: time.Now(),
	}
}

func newApprovalFixture() (ApprovalService, *fakeExpenseRepo, *fakeAuditRepo) {
	expenseRepo := newFakeExpenseRepo()
	auditRepo := &fakeAuditRepo{}
	svc := NewApprovalService(expenseRepo, auditRepo, fakeTxManager{})
	return svc, expenseRepo, auditRepo
}

// --- Tests ---

func TestAccountantApprovesPendingReport(t *testing.T) {
	svc, expenseRepo, auditRepo := newApprovalFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)

	resp, err := svc.Approve(context.Background(), report.ID.String(), workflow.ActorAccountant, uuid.NewString(), "looks fine")
	require.NoError(t, err)

	assert.Equal(t, "APPROVED", resp.Status)
	assert.True(t, resp.ApprovedByAccountant)
	assert.False(t, resp.ApprovedByManager)
	assert.Equal(t, "looks fine", resp.AccountantComment)
	assert.Equal(t, 2, resp.Version)

	require.Len(t, expenseRepo.updates, 1)
	assert.Equal(t, workflow.ActorAccountant, expenseRepo.updates[0].Stage)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionApproveExpense, auditRepo.entries[0].Action)
	assert.Equal(t, report.ID.String(), auditRepo.entries[0].EntityID)
}

func TestManagerFinalApprovesReport(t *testing.T) {
	svc, expenseRepo, _ := newApprovalFixture()
	report := newReport(workflow.StatusApproved)
	expenseRepo.add(report)

	resp, err := svc.Approve(context.Background(), report.ID.String(), workflow.ActorManager, uuid.NewString(), "final ok")
	require.NoError(t, err)

	assert.Equal(t, "FINAL_APPROVED", resp.Status)
	assert.True(t, resp.ApprovedByAccountant)
	assert.True(t, resp.ApprovedByManager)
	assert.Equal(t, "final ok", resp.FinalComment)
}

func TestManagerRejectsAccountantApprovedReport(t *testing.T) {
	svc, expenseRepo, auditRepo := newApprovalFixture()
	report := newReport(workflow.StatusApproved)
	expenseRepo.add(report)

	resp, err := svc.Reject(context.Background(), report.ID.String(), workflow.ActorManager, uuid.NewString(), "over budget")
	require.NoError(t, err)

	assert.Equal(t, "REJECTED_BY_MANAGER", resp.Status)
	assert.Equal(t, "over budget", resp.FinalComment)

	require.Len(t, auditRepo.entries, 1)
	assert.Equal(t, model.ActionRejectExpense, auditRepo.entries[0].Action)
}

func TestInvalidTransitionLeavesReportUntouched(t *testing.T) {
	svc, expenseRepo, auditRepo := newApprovalFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)

	// A manager cannot act before the accountant has approved
	_, err := svc.Approve(context.Background(), report.ID.String(), workflow.ActorManager, uuid.NewString(), "")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	assert.Equal(t, workflow.StatusPending, report.Status)
	assert.Equal(t, 1, report.Version)
	assert.Empty(t, expenseRepo.updates)
	assert.Empty(t, auditRepo.entries)
}

func TestApproveFinalizedReportFails(t *testing.T) {
	svc, expenseRepo, _ := newApprovalFixture()
	report := newReport(workflow.StatusFinalApproved)
	expenseRepo.add(report)

	_, err := svc.Approve(context.Background(), report.ID.String(), workflow.ActorManager, uuid.NewString(), "")
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestApproveVersionConflict(t *testing.T) {
	svc, expenseRepo, _ := newApprovalFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)
	expenseRepo.updateErr = repository.ErrVersionConflict

	_, err := svc.Approve(context.Background(), report.ID.String(), workflow.ActorAccountant, uuid.NewString(), "")
	require.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestApproveUnknownReport(t *testing.T) {
	svc, _, _ := newApprovalFixture()

	_, err := svc.Approve(context.Background(), uuid.NewString(), workflow.ActorAccountant, uuid.NewString(), "")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBatchApproveCountsFailuresIndependently(t *testing.T) {
	svc, expenseRepo, auditRepo := newApprovalFixture()
	pendingA := newReport(workflow.StatusPending)
	pendingB := newReport(workflow.StatusPending)
	alreadyApproved := newReport(workflow.StatusApproved)
	expenseRepo.add(pendingA)
	expenseRepo.add(pendingB)
	expenseRepo.add(alreadyApproved)

	ids := []string{pendingA.ID.String(), pendingB.ID.String(), alreadyApproved.ID.String(), uuid.NewString()}
	result, err := svc.BatchApprove(context.Background(), ids, workflow.ActorAccountant, uuid.NewString(), "")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, "2 expense(s) approved.", result.Message)

	assert.Equal(t, workflow.StatusApproved, pendingA.Status)
	assert.Equal(t, workflow.StatusApproved, pendingB.Status)
	assert.Equal(t, workflow.StatusApproved, alreadyApproved.Status)

	// Two item entries plus the batch summary entry
	var batchEntries int
	for _, e := range auditRepo.entries {
		if e.Action == model.ActionBatchApprove {
			batchEntries++
		}
	}
	assert.Equal(t, 1, batchEntries)
}

func TestBatchRejectMessage(t *testing.T) {
	svc, expenseRepo, _ := newApprovalFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)

	result, err := svc.BatchReject(context.Background(), []string{report.ID.String()}, workflow.ActorAccountant, uuid.NewString(), "missing receipts")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "1 expense(s) rejected.", result.Message)
	assert.Equal(t, workflow.StatusRejected, report.Status)
	assert.Equal(t, "missing receipts", report.AccountantComment)
}

func TestBatchRejectsEmployeeActor(t *testing.T) {
	svc, expenseRepo, _ := newApprovalFixture()
	report := newReport(workflow.StatusPending)
	expenseRepo.add(report)

	_, err := svc.BatchApprove(context.Background(), []string{report.ID.String()}, workflow.ActorEmployee, uuid.NewString(), "")
	require.Error(t, err)
	assert.Equal(t, workflow.StatusPending, report.Status)
}
