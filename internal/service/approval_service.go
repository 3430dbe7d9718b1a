package service

import (
	"context"
	"encoding/json"
	"fmt"

	"xpay/internal/model"
	"xpay/internal/repository"
	"xpay/internal/workflow"

	"github.com/google/uuid"
)

// --- DTOs ---

type DecisionRequest struct {
	Comment string `json:"comment"`
}

type BatchDecisionRequest struct {
	IDs     []string `json:"ids" binding:"required,min=1"`
	Comment string   `json:"comment"`
}

// BatchResponse reports per-item outcomes of a batch action. Succeeded
// items stay applied even when others fail; nothing is rolled back.
type BatchResponse struct {
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
}

// --- Interface ---

type ApprovalService interface {
	Approve(ctx context.Context, id string, actor workflow.Actor, actorID string, comment string) (ExpenseResponse, error)
	Reject(ctx context.Context, id string, actor workflow.Actor, actorID string, comment string) (ExpenseResponse, error)
	BatchApprove(ctx context.Context, ids []string, actor workflow.Actor, actorID string, comment string) (BatchResponse, error)
	BatchReject(ctx context.Context, ids []string, actor workflow.Actor, actorID string, comment string) (BatchResponse, error)
}

type approvalService struct {
	expenseRepo repository.ExpenseRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewApprovalService(
	expenseRepo repository.ExpenseRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ApprovalService {
	return &approvalService{
		expenseRepo: expenseRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *approvalService) Approve(ctx context.Context, id string, actor workflow.Actor, actorID string, comment string) (ExpenseResponse, error) {
	target, err := workflow.ApproveTarget(actor)
	if err != nil {
		return ExpenseResponse{}, err
	}
	return s.decide(ctx, id, actor, actorID, target, model.ActionApproveExpense, comment)
}

func (s *approvalService) Reject(ctx context.Context, id string, actor workflow.Actor, actorID string, comment string) (ExpenseResponse, error) {
	target, err := workflow.RejectTarget(actor)
	if err != nil {
		return ExpenseResponse{}, err
	}
	return s.decide(ctx, id, actor, actorID, target, model.ActionRejectExpense, comment)
}

func (s *approvalService) BatchApprove(ctx context.Context, ids []string, actor workflow.Actor, actorID string, comment string) (BatchResponse, error) {
	if _, err := workflow.ApproveTarget(actor); err != nil {
		return BatchResponse{}, err
	}
	result := workflow.ApplyBatch(ids, func(id string) error {
		_, applyErr := s.Approve(ctx, id, actor, actorID, comment)
		return applyErr
	})
	s.logBatch(ctx, actorID, model.ActionBatchApprove, ids, result)
	return BatchResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Message:   result.Message("approved"),
	}, nil
}

func (s *approvalService) BatchReject(ctx context.Context, ids []string, actor workflow.Actor, actorID string, comment string) (BatchResponse, error) {
	if _, err := workflow.RejectTarget(actor); err != nil {
		return BatchResponse{}, err
	}
	result := workflow.ApplyBatch(ids, func(id string) error {
		_, applyErr := s.Reject(ctx, id, actor, actorID, comment)
		return applyErr
	})
	s.logBatch(ctx, actorID, model.ActionBatchReject, ids, result)
	return BatchResponse{
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Message:   result.Message("rejected"),
	}, nil
}

// decide validates the transition against the state machine and applies
// it as a version-checked partial write. The record is never mutated on
// a disallowed transition.
func (s *approvalService) decide(ctx context.Context, id string, actor workflow.Actor, actorID string, target workflow.Status, action string, comment string) (ExpenseResponse, error) {
	reportID, err := uuid.Parse(id)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("invalid expense id: %w", err)
	}

	report, err := s.expenseRepo.FindByID(ctx, reportID)
	if err != nil {
		return ExpenseResponse{}, err
	}

	current := workflow.Canonical(string(report.Status))
	newStatus, err := workflow.Transition(current, actor, target)
	if err != nil {
		return ExpenseResponse{}, err
	}

	var approverID *uuid.UUID
	if parsed, parseErr := uuid.Parse(actorID); parseErr == nil {
		approverID = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		update := repository.StatusUpdate{
			Status:  newStatus,
			Comment: comment,
			Stage:   actor,
			Version: report.Version,
		}
		if updateErr := s.expenseRepo.UpdateStatus(txCtx, reportID, update); updateErr != nil {
			return updateErr
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from":    current.String(),
			"to":      newStatus.String(),
			"actor":   actor.String(),
			"comment": comment,
		})
		audit := &model.AuditLog{
			UserID:     approverID,
			Action:     action,
			EntityID:   report.ID.String(),
			EntityName: report.WorkflowType,
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

	updated, err := s.expenseRepo.FindByID(ctx, reportID)
	if err != nil {
		return ExpenseResponse{}, fmt.Errorf("failed to reload expense report: %w", err)
	}

	return toExpenseResponse(*updated), nil
}

// logBatch records the batch outcome. A failed audit write must not
// undo the already-applied item transitions.
func (s *approvalService) logBatch(ctx context.Context, actorID string, action string, ids []string, result workflow.BatchResult) {
	var userID *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		userID = &parsed
	}

	details, _ := json.Marshal(map[string]interface{}{
		"selected":  len(ids),
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	entry := &model.AuditLog{
		UserID:  userID,
		Action:  action,
		Details: string(details),
	}
	_ = s.auditRepo.Log(ctx, entry)
}
