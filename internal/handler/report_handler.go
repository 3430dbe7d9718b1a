package handler

import (
	"net/http"

	"xpay/internal/middleware"
	"xpay/internal/model"
	"xpay/internal/service"

	"github.com/gin-gonic/gin"

	"xpay/pkg/response"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/employee", middleware.RequireRole(model.RoleEmployee, model.RoleAccountant, model.RoleManager), h.EmployeeSummary)
		reports.GET("/manager", middleware.RequireRole(model.RoleManager), h.ManagerSummary)
		reports.GET("/monthly", middleware.RequireRole(model.RoleAccountant, model.RoleManager), h.MonthlyBreakdown)
	}
}

// EmployeeSummary returns the caller's month totals by bucket
// @Summary      Employee month summary
// @Description  Totals for the caller's own reports in a month, bucketed into approved, rejected and pending.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Month (YYYY-MM), defaults to current"
// @Success      200    {object}  response.Response{data=service.EmployeeSummaryResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/reports/employee [get]
func (h *ReportHandler) EmployeeSummary(c *gin.Context) {
	userID, _ := middleware.CurrentUser(c)

	summary, err := h.reportService.EmployeeSummary(c.Request.Context(), userID, c.Query("month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// ManagerSummary returns company-wide month totals by status bucket
// @Summary      Manager month summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Month (YYYY-MM), defaults to current"
// @Success      200    {object}  response.Response{data=service.ManagerSummaryResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/reports/manager [get]
func (h *ReportHandler) ManagerSummary(c *gin.Context) {
	summary, err := h.reportService.ManagerSummary(c.Request.Context(), c.Query("month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// MonthlyBreakdown groups spending by employee and month
// @Summary      Per-employee monthly breakdown
// @Description  Grouped totals per (employee, month) pair. Without a month filter the whole collection is grouped.
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        month  query     string  false  "Month (YYYY-MM), empty for all months"
// @Success      200    {object}  response.Response{data=[]service.UserMonthGroupResponse}
// @Failure      500    {object}  response.Response
// @Router       /api/reports/monthly [get]
func (h *ReportHandler) MonthlyBreakdown(c *gin.Context) {
	groups, err := h.reportService.MonthlyBreakdown(c.Request.Context(), c.Query("month"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, groups))
}
