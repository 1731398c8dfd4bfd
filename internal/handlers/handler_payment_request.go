package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/paydesk/paydesk_backend/internal/middleware"
)

// paymentRequestHandler handles HTTP requests related to payment requests.
type paymentRequestHandler struct {
	requestService portssvc.PaymentRequestSvcFacade
	userService    portssvc.UserSvcFacade
}

func newPaymentRequestHandler(rs portssvc.PaymentRequestSvcFacade, us portssvc.UserSvcFacade) *paymentRequestHandler {
	return &paymentRequestHandler{requestService: rs, userService: us}
}

// RegisterPaymentRequestRoutes registers all payment-request routes.
func RegisterPaymentRequestRoutes(rg *gin.RouterGroup, requestService portssvc.PaymentRequestSvcFacade, userService portssvc.UserSvcFacade) {
	h := newPaymentRequestHandler(requestService, userService)

	requests := rg.Group("/payment-requests")
	{
		requests.POST("", h.createRequest)
		requests.GET("", h.listRequests)
		requests.GET("/:id", h.getRequest)
		requests.PUT("/:id", h.updateRequest)
		requests.GET("/:id/history", h.getHistory)
	}
}

// createRequest godoc
// @Summary Create a payment request
// @Description Creates a payment request. Send JSON directly, or multipart
// @Description with the JSON in a "payload" field plus optional
// @Description "requisitesFile" and "receiptFile" parts.
// @Tags payment-requests
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param request body dto.CreatePaymentRequestRequest true "Payment request"
// @Success 201 {object} dto.PaymentRequestResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Security BearerAuth
// @Router /payment-requests [post]
func (h *paymentRequestHandler) createRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreatePaymentRequestRequest
	if err := bindPayload(c, &req); err != nil {
		respondBindingError(c, err)
		return
	}

	requisitesFile, closeReq, err := formFileUpload(c, "requisitesFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisites file: " + err.Error()})
		return
	}
	if closeReq != nil {
		defer closeReq.Close()
	}
	receiptFile, closeRcpt, err := formFileUpload(c, "receiptFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receipt file: " + err.Error()})
		return
	}
	if closeRcpt != nil {
		defer closeRcpt.Close()
	}
	req.RequisitesFile = requisitesFile
	req.ReceiptFile = receiptFile

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pr, err := h.requestService.CreateRequest(c.Request.Context(), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create payment request")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPaymentRequestResponse(pr))
}

// listRequests godoc
// @Summary List payment requests
// @Description Retrieves a page of payment requests with amount and
// @Description commission totals over the whole filtered set. Base-role
// @Description callers only ever see their own requests.
// @Tags payment-requests
// @Produce json
// @Param authorID query string false "Filter by author"
// @Param participantID query string false "Filter by participant"
// @Param expenseTypeID query string false "Filter by expense type"
// @Param expenseCategoryID query string false "Filter by expense category"
// @Param paidAccountID query string false "Filter by paid account"
// @Param purchaseReference query string false "Substring match"
// @Param readyForPayment query bool false "Filter by readiness"
// @Param paid query bool false "Filter by paid flag"
// @Param createdFrom query string false "Created on or after (YYYY-MM-DD)"
// @Param createdTo query string false "Created on or before (YYYY-MM-DD)"
// @Param perPage query int false "Page size (10, 20, 30, 50, 100)"
// @Param page query int false "Page number"
// @Success 200 {object} dto.ListPaymentRequestsResponse
// @Failure 400 {object} map[string]string "Invalid query"
// @Security BearerAuth
// @Router /payment-requests [get]
func (h *paymentRequestHandler) listRequests(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListPaymentRequestsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindingError(c, err)
		return
	}

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	requests, err := h.requestService.ListRequests(c.Request.Context(), params, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list payment requests")
		return
	}
	params.NormalizePerPage()
	out := dto.ListPaymentRequestsResponse{
		PaymentRequests: make([]dto.PaymentRequestResponse, len(requests)),
		Page:            params.Page,
		PerPage:         params.PerPage,
	}
	// Totals only accompany a date-bounded listing.
	if params.CreatedFrom != nil {
		totals, err := h.requestService.SumRequests(c.Request.Context(), params, actorUserID)
		if err != nil {
			respondServiceError(c, logger, err, "Failed to total payment requests")
			return
		}
		out.Totals = &dto.RequestTotalsResponse{
			Amount:     totals.Amount,
			Commission: totals.Commission,
		}
	}
	for i := range requests {
		out.PaymentRequests[i] = dto.ToPaymentRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, out)
}

// getRequest godoc
// @Summary Get a payment request by ID
// @Tags payment-requests
// @Produce json
// @Param id path string true "Payment request ID"
// @Success 200 {object} dto.PaymentRequestResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /payment-requests/{id} [get]
func (h *paymentRequestHandler) getRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pr, err := h.requestService.GetRequestByID(c.Request.Context(), c.Param("id"), actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve payment request")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentRequestResponse(pr))
}

// updateRequest godoc
// @Summary Update a payment request
// @Description Applies an edit under the role policy and appends one audit
// @Description record covering all changed fields. Accepts the same JSON or
// @Description multipart shapes as create.
// @Tags payment-requests
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Payment request ID"
// @Param request body dto.UpdatePaymentRequestRequest true "Fields to update"
// @Success 200 {object} dto.PaymentRequestResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /payment-requests/{id} [put]
func (h *paymentRequestHandler) updateRequest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpdatePaymentRequestRequest
	if err := bindPayload(c, &req); err != nil {
		respondBindingError(c, err)
		return
	}

	requisitesFile, closeReq, err := formFileUpload(c, "requisitesFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid requisites file: " + err.Error()})
		return
	}
	if closeReq != nil {
		defer closeReq.Close()
	}
	receiptFile, closeRcpt, err := formFileUpload(c, "receiptFile")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receipt file: " + err.Error()})
		return
	}
	if closeRcpt != nil {
		defer closeRcpt.Close()
	}
	req.RequisitesFile = requisitesFile
	req.ReceiptFile = receiptFile

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	pr, err := h.requestService.UpdateRequest(c.Request.Context(), c.Param("id"), req, actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update payment request")
		return
	}
	c.JSON(http.StatusOK, dto.ToPaymentRequestResponse(pr))
}

// getHistory godoc
// @Summary Get a payment request's history
// @Description Retrieves the audit trail, newest first, with acting user
// @Description names resolved.
// @Tags payment-requests
// @Produce json
// @Param id path string true "Payment request ID"
// @Success 200 {array} dto.AuditRecordResponse
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Not found"
// @Security BearerAuth
// @Router /payment-requests/{id}/history [get]
func (h *paymentRequestHandler) getHistory(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorUserID, ok := middleware.GetUserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.requestService.GetHistory(c.Request.Context(), c.Param("id"), actorUserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve history")
		return
	}

	out := make([]dto.AuditRecordResponse, len(records))
	for i := range records {
		out[i] = dto.ToAuditRecordResponse(&records[i])
	}

	// Resolve acting user names for display.
	names := map[string]string{}
	for i := range out {
		name, ok := names[out[i].UserID]
		if !ok {
			if user, err := h.userService.GetUserByID(c.Request.Context(), out[i].UserID); err == nil {
				name = user.Name
			}
			names[out[i].UserID] = name
		}
		out[i].UserName = name
	}

	c.JSON(http.StatusOK, out)
}
