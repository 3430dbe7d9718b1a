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

type fakeUserRepo struct {
	users []model.User
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	f.users = append(f.users, *user)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].ID.String() == id {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for i := range f.users {
		if f.users[i].Username == username {
			return &f.users[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]model.User, int64, error) {
	return f.users, int64(len(f.users)), nil
}

func (f *fakeUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	return f.users, nil
}

func (f *fakeUserRepo) Update(_ context.Context, _ *model.User) error { return nil }

func (f *fakeUserRepo) Delete(_ context.Context, _ string) error { return nil }

func TestManagerSummaryBucketsAreConsistent(t *testing.T) {
	expenseRepo := newFakeExpenseRepo()
	svc := NewReportService(expenseRepo, &fakeUserRepo{})

	pending := newReport(workflow.StatusPending)
	pending.Date = "2025-01-05"
	approved := newReport(workflow.StatusApproved)
	approved.Date = "2025-01-06"
	rejected := newReport(workflow.StatusRejectedByManager)
	rejected.Date = "2025-01-07"
	expenseRepo.add(pending)
	expenseRepo.add(approved)
	expenseRepo.add(rejected)

	summary, err := svc.ManagerSummary(context.Background(), "2025-01")
	require.NoError(t, err)

	assert.Equal(t, "450.00", summary.GrandTotal)
	assert.Equal(t, "150.00", summary.PendingTotal)
	assert.Equal(t, "150.00", summary.ApprovedTotal)
	// Manager rejections land in the rejected bucket
	assert.Equal(t, "150.00", summary.RejectedTotal)
	assert.Equal(t, "0.00", summary.FinalApprovedTotal)
}

func TestEmployeeSummaryScopedToUser(t *testing.T) {
	expenseRepo := newFakeExpenseRepo()
	svc := NewReportService(expenseRepo, &fakeUserRepo{})

	mine := newReport(workflow.StatusFinalApproved)
	mine.Date = "2025-01-05"
	theirs := newReport(workflow.StatusFinalApproved)
	theirs.Date = "2025-01-06"
	expenseRepo.add(mine)
	expenseRepo.add(theirs)

	summary, err := svc.EmployeeSummary(context.Background(), mine.UserID.String(), "2025-01")
	require.NoError(t, err)

	// Finalized reports count as approved for the employee
	assert.Equal(t, "150.00", summary.ApprovedTotal)
	assert.Equal(t, "0.00", summary.RejectedTotal)
	assert.Equal(t, "0.00", summary.PendingTotal)
}

func TestMonthlyBreakdownGroupsByUserAndMonth(t *testing.T) {
	expenseRepo := newFakeExpenseRepo()
	userRepo := &fakeUserRepo{}
	svc := NewReportService(expenseRepo, userRepo)

	alice := uuid.New()
	bob := uuid.New()
	userRepo.users = []model.User{
		{ID: alice, Username: "alice", Role: model.RoleEmployee},
		{ID: bob, Username: "bob", Role: model.RoleEmployee},
	}

	first := newReport(workflow.StatusPending)
	first.UserID = alice
	first.Date = "2025-01-05"
	second := newReport(workflow.StatusApproved)
	second.UserID = alice
	second.Date = "2025-01-20"
	third := newReport(workflow.StatusPending)
	third.UserID = bob
	third.Date = "2025-02-03"
	expenseRepo.add(first)
	expenseRepo.add(second)
	expenseRepo.add(third)

	groups, err := svc.MonthlyBreakdown(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "alice", groups[0].EmployeeName)
	assert.Equal(t, "2025-01", groups[0].Month)
	assert.Equal(t, 2, groups[0].RecordCount)
	assert.Equal(t, "300.00", groups[0].Total)

	assert.Equal(t, "bob", groups[1].EmployeeName)
	assert.Equal(t, "2025-02", groups[1].Month)
	assert.Equal(t, 1, groups[1].RecordCount)

	scoped, err := svc.MonthlyBreakdown(context.Background(), "2025-02")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "bob", scoped[0].EmployeeName)
}
