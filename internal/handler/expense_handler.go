package handler

import (
	"errors"
	"net/http"

	"xpay/internal/middleware"
	"xpay/internal/model"
	"xpay/internal/service"
	"xpay/internal/workflow"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"xpay/pkg/response"
)

type ExpenseHandler struct {
	expenseService service.ExpenseService
}

func NewExpenseHandler(expenseService service.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: expenseService}
}

func (h *ExpenseHandler) RegisterRoutes(router *gin.RouterGroup) {
	expenses := router.Group("/api/expenses")
	{
		expenses.POST("", middleware.RequireRole(model.RoleEmployee), h.SubmitExpense)
		expenses.GET("", middleware.RequireRole(model.RoleEmployee, model.RoleAccountant, model.RoleManager), h.GetView)
		expenses.GET("/:id", middleware.RequireRole(model.RoleEmployee, model.RoleAccountant, model.RoleManager), h.GetExpense)
		expenses.DELETE("/:id", middleware.RequireRole(model.RoleAccountant, model.RoleManager), h.DeleteExpense)
	}
}

// SubmitExpense handles expense submission with line-item normalization
// @Summary      Submit an expense report
// @Description  Creates a pending expense report for the authenticated employee. Legacy named amount fields and line items are both accepted.
// @Tags         expenses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SubmitExpenseRequest  true  "Expense Payload"
// @Success      201      {object}  response.Response{data=service.ExpenseResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/expenses [post]
func (h *ExpenseHandler) SubmitExpense(c *gin.Context) {
	var req service.SubmitExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.InvalidPayload(err))
		return
	}

	userID, _ := middleware.CurrentUser(c)
	expense, err := h.expenseService.Submit(c.Request.Context(), userID, req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, expense))
}

// GetView returns the role-scoped expense dashboard for a month
// @Summary      Role-scoped expense view
// @Description  Employees see their own records and summary; accountants see the month's records (optionally pending only); managers see records awaiting final approval plus the month summary.
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        month         query     string  false  "Month (YYYY-MM), defaults to current"
// @Param        pending_only  query     bool    false  "Accountant view: pending records only"
// @Success      200           {object}  response.Response{data=service.ViewResponse}
// @Failure      500           {object}  response.Response
// @Router       /api/expenses [get]
func (h *ExpenseHandler) GetView(c *gin.Context) {
	userID, role := middleware.CurrentUser(c)
	pendingOnly := c.Query("pending_only") == "true"

	view, err := h.expenseService.GetView(c.Request.Context(), workflow.Actor(role), userID, c.Query("month"), pendingOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, view))
}

// GetExpense returns a single expense report
// @Summary      Get expense report
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response{data=service.ExpenseResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c *gin.Context) {
	expense, err := h.expenseService.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense report not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, expense))
}

// DeleteExpense removes an expense report
// @Summary      Delete expense report
// @Tags         expenses
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Expense ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	if err := h.expenseService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "Expense report not found"))
			return
		}
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}
