package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/paydesk/paydesk_backend/internal/middleware"
)

// ruleHandler handles HTTP requests related to recurrence rules.
type ruleHandler struct {
	ruleService portssvc.RuleSvcFacade
}

func newRuleHandler(rs portssvc.RuleSvcFacade) *ruleHandler {
	return &ruleHandler{ruleService: rs}
}

// registerRuleRoutes registers all recurrence-rule routes.
func registerRuleRoutes(rg *gin.RouterGroup, ruleService portssvc.RuleSvcFacade) {
	h := newRuleHandler(ruleService)

	rules := rg.Group("/rules")
	{
		rules.POST("", h.createRule)
		rules.GET("", h.listRules)
		rules.GET("/logs", h.listRuleLogs)
		rules.GET("/:id", h.getRule)
		rules.PUT("/:id", h.updateRule)
		rules.DELETE("/:id", h.deleteRule)
	}
}

// createRule godoc
// @Summary Create a recurrence rule
// @Description Creates a rule and computes its first occurrence immediately.
// @Description Send JSON directly, or multipart with the JSON in a "payload"
// @Description field plus an optional "requisitesFile" part.
// @Tags rules
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param rule body dto.CreateRuleRequest true "Rule definition"
// @Success 201 {object} dto.RuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Security BearerAuth
// @Router /rules [post]
func (h *ruleHandler) createRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRuleRequest
	if err := bindPayload(c, &req); err != nil {
		respondBindingError(c, err)
		return
	}

	requisitesFile, closeFile, err := formFileUpload(c, "requisitesFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisites file: " + err.Error()})
		return
	}
	if closeFile != nil {
		defer closeFile.Close()
	}
	req.RequisitesFile = requisitesFile

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.CreateRule(c.Request.Context(), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create rule")
		return
	}
	c.JSON(http.StatusCreated, dto.ToRuleResponse(rule))
}

// listRules godoc
// @Summary List recurrence rules
// @Description Admins see every rule; other roles see their own.
// @Tags rules
// @Produce json
// @Success 200 {array} dto.RuleResponse
// @Security BearerAuth
// @Router /rules [get]
func (h *ruleHandler) listRules(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rules, err := h.ruleService.ListRules(c.Request.Context(), actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list rules")
		return
	}
	out := make([]dto.RuleResponse, len(rules))
	for i := range rules {
		out[i] = dto.ToRuleResponse(&rules[i])
	}
	c.JSON(http.StatusOK, out)
}

// listRuleLogs godoc
// @Summary List rule execution logs
// @Description Retrieves the most recent execution log entries, newest first.
// @Description Not available to the base role.
// @Tags rules
// @Produce json
// @Param limit query int false "Maximum entries (default 200)"
// @Success 200 {array} dto.RuleLogResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /rules/logs [get]
func (h *ruleHandler) listRuleLogs(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := h.ruleService.ListRuleLogs(c.Request.Context(), limit, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list rule logs")
		return
	}
	out := make([]dto.RuleLogResponse, len(entries))
	for i := range entries {
		out[i] = dto.ToRuleLogResponse(&entries[i])
	}
	c.JSON(http.StatusOK, out)
}

// getRule godoc
// @Summary Get a recurrence rule by ID
// @Tags rules
// @Produce json
// @Param id path string true "Rule ID"
// @Success 200 {object} dto.RuleResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /rules/{id} [get]
func (h *ruleHandler) getRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.GetRuleByID(c.Request.Context(), c.Param("id"), actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// updateRule godoc
// @Summary Update a recurrence rule
// @Description Resubmits the whole definition; the schedule is recomputed on
// @Description save. Accepts the same JSON or multipart shapes as create.
// @Tags rules
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Rule ID"
// @Param rule body dto.UpdateRuleRequest true "Rule definition"
// @Success 200 {object} dto.RuleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /rules/{id} [put]
func (h *ruleHandler) updateRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdateRuleRequest
	if err := bindPayload(c, &req); err != nil {
		respondBindingError(c, err)
		return
	}

	requisitesFile, closeFile, err := formFileUpload(c, "requisitesFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisites file: " + err.Error()})
		return
	}
	if closeFile != nil {
		defer closeFile.Close()
	}
	req.RequisitesFile = requisitesFile

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	rule, err := h.ruleService.UpdateRule(c.Request.Context(), c.Param("id"), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update rule")
		return
	}
	c.JSON(http.StatusOK, dto.ToRuleResponse(rule))
}

// deleteRule godoc
// @Summary Delete a recurrence rule
// @Description Removes the rule and its execution logs.
// @Tags rules
// @Param id path string true "Rule ID"
// @Success 204 "Deleted"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /rules/{id} [delete]
func (h *ruleHandler) deleteRule(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	if err := h.ruleService.DeleteRule(c.Request.Context(), c.Param("id"), actorUserID); err != nil {
		respondServiceError(c, logger, err, "Failed to delete rule")
		return
	}
	c.Status(http.StatusNoContent)
}
