package repository

import (
	"context"
	"errors"

	"xpay/internal/model"
	"xpay/internal/workflow"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrVersionConflict is returned when a status update loses the race
// against a concurrent write on the same report.
var ErrVersionConflict = errors.New("expense report was modified concurrently")

// StatusUpdate is the partial-field write applied by an approval action.
// Comment lands in the column matching the approval stage.
type StatusUpdate struct {
	Status  workflow.Status
	Comment string
	Stage   workflow.Actor // accountant -> accountant_comment, manager -> final_comment
	Version int            // expected current version
}

type ExpenseRepository interface {
	Create(ctx context.Context, report *model.ExpenseReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ExpenseReport, error)
	// List performs a full collection scan; month/user/status selection
	// is the workflow engine's job, not the database's.
	List(ctx context.Context) ([]model.ExpenseReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type expenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, report *model.ExpenseReport) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *expenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ExpenseReport, error) {
	var report model.ExpenseReport
	if err := GetDB(ctx, r.db).Preload("Items").Preload("User").First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *expenseRepository) List(ctx context.Context) ([]model.ExpenseReport, error) {
	var reports []model.ExpenseReport
	if err := GetDB(ctx, r.db).Preload("Items").Preload("User").Order("date desc, created_at desc").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *expenseRepository) UpdateStatus(ctx context.Context, id uuid.UUID, update StatusUpdate) error {
	fields := map[string]interface{}{
		"status":  update.Status,
		"version": update.Version + 1,
	}
	switch update.Stage {
	case workflow.ActorManager:
		fields["final_comment"] = update.Comment
	default:
		fields["accountant_comment"] = update.Comment
	}

	result := GetDB(ctx, r.db).Model(&model.ExpenseReport{}).
		Where("id = ? AND version = ?", id, update.Version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// Either the report vanished or someone else bumped the version
		var count int64
		if err := GetDB(ctx, r.db).Model(&model.ExpenseReport{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return ErrVersionConflict
	}
	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.ExpenseReport{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
