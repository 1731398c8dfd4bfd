package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/paydesk/paydesk_backend/internal/middleware"
)

// expenseHandler handles HTTP requests for expense reference data.
type expenseHandler struct {
	expenseService portssvc.ExpenseSvcFacade
}

func newExpenseHandler(es portssvc.ExpenseSvcFacade) *expenseHandler {
	return &expenseHandler{expenseService: es}
}

// registerExpenseRoutes registers expense type, category and payment account
// routes. Reads are open to every authenticated user; writes are admin only
// and enforced in the service.
func registerExpenseRoutes(rg *gin.RouterGroup, expenseService portssvc.ExpenseSvcFacade) {
	h := newExpenseHandler(expenseService)

	types := rg.Group("/expense-types")
	{
		types.POST("", h.createExpenseType)
		types.GET("", h.listExpenseTypes)
		types.PUT("/:id", h.updateExpenseType)
		types.DELETE("/:id", h.deleteExpenseType)
	}

	categories := rg.Group("/expense-categories")
	{
		categories.POST("", h.createExpenseCategory)
		categories.GET("", h.listExpenseCategories)
		categories.PUT("/:id", h.updateExpenseCategory)
		categories.DELETE("/:id", h.deleteExpenseCategory)
	}

	accounts := rg.Group("/payment-accounts")
	{
		accounts.POST("", h.createPaymentAccount)
		accounts.GET("", h.listPaymentAccounts)
		accounts.PUT("/:id", h.updatePaymentAccount)
		accounts.DELETE("/:id", h.deletePaymentAccount)
	}
}

// createExpenseType godoc
// @Summary Create an expense type
// @Tags expense-types
// @Accept json
// @Produce json
// @Param expenseType body dto.CreateExpenseTypeRequest true "Expense type"
// @Success 201 {object} dto.ExpenseTypeResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /expense-types [post]
func (h *expenseHandler) createExpenseType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateExpenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	et, err := h.expenseService.CreateExpenseType(c.Request.Context(), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create expense type")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExpenseTypeResponse(et))
}

// listExpenseTypes godoc
// @Summary List expense types
// @Tags expense-types
// @Produce json
// @Success 200 {array} dto.ExpenseTypeResponse
// @Security BearerAuth
// @Router /expense-types [get]
func (h *expenseHandler) listExpenseTypes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	types, err := h.expenseService.ListExpenseTypes(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list expense types")
		return
	}
	out := make([]dto.ExpenseTypeResponse, len(types))
	for i := range types {
		out[i] = dto.ToExpenseTypeResponse(&types[i])
	}
	c.JSON(http.StatusOK, out)
}

// updateExpenseType godoc
// @Summary Update an expense type
// @Tags expense-types
// @Accept json
// @Produce json
// @Param id path string true "Expense type ID"
// @Param expenseType body dto.UpdateExpenseTypeRequest true "Fields to update"
// @Success 200 {object} dto.ExpenseTypeResponse
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /expense-types/{id} [put]
func (h *expenseHandler) updateExpenseType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateExpenseTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	et, err := h.expenseService.UpdateExpenseType(c.Request.Context(), c.Param("id"), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update expense type")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseTypeResponse(et))
}

// deleteExpenseType godoc
// @Summary Delete an expense type
// @Tags expense-types
// @Param id path string true "Expense type ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /expense-types/{id} [delete]
func (h *expenseHandler) deleteExpenseType(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.expenseService.DeleteExpenseType(c.Request.Context(), c.Param("id"), actorUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete expense type")
		return
	}
	c.Status(http.StatusNoContent)
}

// createExpenseCategory godoc
// @Summary Create an expense category
// @Tags expense-categories
// @Accept json
// @Produce json
// @Param category body dto.CreateExpenseCategoryRequest true "Expense category"
// @Success 201 {object} dto.ExpenseCategoryResponse
// @Failure 404 {object} map[string]string "Expense type not found"
// @Security BearerAuth
// @Router /expense-categories [post]
func (h *expenseHandler) createExpenseCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ec, err := h.expenseService.CreateExpenseCategory(c.Request.Context(), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create expense category")
		return
	}
	c.JSON(http.StatusCreated, dto.ToExpenseCategoryResponse(ec))
}

// listExpenseCategories godoc
// @Summary List expense categories
// @Tags expense-categories
// @Produce json
// @Success 200 {array} dto.ExpenseCategoryResponse
// @Security BearerAuth
// @Router /expense-categories [get]
func (h *expenseHandler) listExpenseCategories(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	categories, err := h.expenseService.ListExpenseCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list expense categories")
		return
	}
	out := make([]dto.ExpenseCategoryResponse, len(categories))
	for i := range categories {
		out[i] = dto.ToExpenseCategoryResponse(&categories[i])
	}
	c.JSON(http.StatusOK, out)
}

// updateExpenseCategory godoc
// @Summary Update an expense category
// @Tags expense-categories
// @Accept json
// @Produce json
// @Param id path string true "Expense category ID"
// @Param category body dto.UpdateExpenseCategoryRequest true "Fields to update"
// @Success 200 {object} dto.ExpenseCategoryResponse
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /expense-categories/{id} [put]
func (h *expenseHandler) updateExpenseCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateExpenseCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	ec, err := h.expenseService.UpdateExpenseCategory(c.Request.Context(), c.Param("id"), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update expense category")
		return
	}
	c.JSON(http.StatusOK, dto.ToExpenseCategoryResponse(ec))
}

// deleteExpenseCategory godoc
// @Summary Delete an expense category
// @Tags expense-categories
// @Param id path string true "Expense category ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /expense-categories/{id} [delete]
func (h *expenseHandler) deleteExpenseCategory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.expenseService.DeleteExpenseCategory(c.Request.Context(), c.Param("id"), actorUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete expense category")
		return
	}
	c.Status(http.StatusNoContent)
}

// createPaymentAccount godoc
// @Summary Create a payment account
// @Tags payment-accounts
// @Accept json
// @Produce json
// @Param account body dto.CreatePaymentAccountRequest true "Payment account"
// @Success 201 {object} dto.PaymentAccountResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /payment-accounts [post]
func (h *expenseHandler) createPaymentAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pa, err := h.expenseService.CreatePaymentAccount(c.Request.Context(), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create payment account")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPaymentAccountResponse(pa))
}

// listPaymentAccounts godoc
// @Summary List payment accounts
// @Tags payment-accounts
// @Produce json
// @Success 200 {array} dto.PaymentAccountResponse
// @Security BearerAuth
// @Router /payment-accounts [get]
func (h *expenseHandler) listPaymentAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	accounts, err := h.expenseService.ListPaymentAccounts(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list payment accounts")
		return
	}
	out := make([]dto.PaymentAccountResponse, len(accounts))
	for i := range accounts {
		out[i] = dto.ToPaymentAccountResponse(&accounts[i])
	}
	c.JSON(http.StatusOK, out)
}

// updatePaymentAccount godoc
// @Summary Update a payment account
// @Tags payment-accounts
// @Accept json
// @Produce json
// @Param id path string true "Payment account ID"
// @Param account body dto.UpdatePaymentAccountRequest true "Fields to update"
// @Success 200 {object} dto.PaymentAccountResponse
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /payment-accounts/{id} [put]
func (h *expenseHandler) updatePaymentAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdatePaymentAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pa, err := h.expenseService.UpdatePaymentAccount(c.Request.Context(), c.Param("id"), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update payment account")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentAccountResponse(pa))
}

// deletePaymentAccount godoc
// @Summary Delete a payment account
// @Tags payment-accounts
// @Param id path string true "Payment account ID"
// @Success 204 "Deleted"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /payment-accounts/{id} [delete]
func (h *expenseHandler) deletePaymentAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.expenseService.DeletePaymentAccount(c.Request.Context(), c.Param("id"), actorUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete payment account")
		return
	}
	c.Status(http.StatusNoContent)
}
