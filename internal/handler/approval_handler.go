package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"xpay/internal/middleware"
	"xpay/internal/model"
	"xpay/internal/repository"
	"xpay/internal/service"
	"xpay/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"xpay/pkg/response"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	expenses.Use(middleware.RequireRole(model.RoleAccountant, model.RoleManager))
	{
		expenses.PUT("/:id/approve", h.Approve)
		expenses.PUT("/:id/reject", h.Reject)
		expenses.POST("/batch/approve", h.BatchApprove)
		expenses.POST("/batch/reject", h.BatchReject)
	}
}

type decisionFunc func(ctx context.Context, id string, actor workflow.Actor, actorID string, comment string) (service.ExpenseResponse, error)

type batchFunc func(ctx context.Context, ids []string, actor workflow.Actor, actorID string, comment string) (service.BatchResponse, error)

// Approve advances an expense report along the approval chain
// @Summary      Approve an expense report
// @Description  Accountants move PENDING reports to APPROVED; managers move APPROVED reports to FINAL_APPROVED.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true   "Expense ID"
// @Param        payload  body      service.DecisionRequest  false  "Optional comment"
// @Success      200      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/expenses/{id}/approve [put]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.decide(c, h.approvalService.Approve)
}

// Reject declines an expense report at the caller's stage
// @Summary      Reject an expense report
// @Description  Accountants reject PENDING reports; managers reject reports already approved by the accountant.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                   true   "Expense ID"
// @Param        payload  body      service.DecisionRequest  false  "Optional comment"
// @Success      200      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/expenses/{id}/reject [put]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.decide(c, h.approvalService.Reject)
}

func (h *ApprovalHandler) decide(c *gin.Context, fn decisionFunc) {
	// The comment body is optional, an empty request body is fine.
	var req service.DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, response.InvalidPayload(err))
		return
	}

	userID, role := middleware.CurrentUser(c)
	expense, err := fn(c.Request.Context(), c.Param("id"), workflow.Actor(role), userID, req.Comment)
	if err != nil {
		h.writeDecisionError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// BatchApprove applies the caller's approve transition to each listed report
// @Summary      Batch approve expense reports
// @Description  Each report is processed independently; failures do not abort the batch.
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchDecisionRequest  true  "Expense IDs"
// @Success      200      {object}  response.Response{data=service.BatchResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/batch/approve [post]
func (h *ApprovalHandler) BatchApprove(c *gin.Context) {
	h.batch(c, h.approvalService.BatchApprove)
}

// BatchReject applies the caller's reject transition to each listed report
// @Summary      Batch reject expense reports
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.BatchDecisionRequest  true  "Expense IDs"
// @Success      200      {object}  response.Response{data=service.BatchResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses/batch/reject [post]
func (h *ApprovalHandler) BatchReject(c *gin.Context) {
	h.batch(c, h.approvalService.BatchReject)
}

func (h *ApprovalHandler) batch(c *gin.Context, fn batchFunc) {
	var req service.BatchDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.InvalidPayload(err))
		return
	}

	userID, role := middleware.CurrentUser(c)
	result, err := fn(c.Request.Context(), req.IDs, workflow.Actor(role), userID, req.Comment)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

func (h *ApprovalHandler) writeDecisionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense report not found"))
	case errors.Is(err, workflow.ErrInvalidTransition):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.Is(err, repository.ErrVersionConflict):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, "Expense report was modified concurrently, please retry"))
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	}
}
