package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paydesk/paydesk_backend/internal/core/ports/services"
	"github.com/paydesk/paydesk_backend/internal/dto"
	"github.com/paydesk/paydesk_backend/internal/middleware"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// authHandler handles HTTP requests related to authentication.
type authHandler struct {
	authService services.AuthSvcFacade
}

func newAuthHandler(as services.AuthSvcFacade) *authHandler {
	return &authHandler{authService: as}
}

// registerAuthRoutes sets up the public authentication routes. Login is
// rate limited per client IP.
func registerAuthRoutes(r *gin.Engine, authService services.AuthSvcFacade) {
	h := newAuthHandler(authService)

	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := r.Group("/api/v1/auth")
	auth.POST("/login", middleware.RateLimit(ipLimiter), h.login)
}

// login godoc
// @Summary Authenticate with email and password
// @Description Verifies credentials and returns a signed bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 403 {object} map[string]string "Invalid credentials or blocked account"
// @Failure 429 {object} map[string]string "Too many attempts"
// @Router /auth/login [post]
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		logger.Warn("Login rejected", slog.String("email", req.Email))
		respondServiceError(c, logger, err, "Failed to authenticate")
		return
	}

	c.JSON(http.StatusOK, resp)
}
