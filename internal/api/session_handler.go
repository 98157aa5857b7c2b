package api

import (
	"lessonhub/internal/service"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// SessionHandler opens profile and admin sessions.
type SessionHandler struct {
	sessionService service.SessionService
	logger         *log.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService, logger *log.Logger) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, logger: logger}
}

// --- Request/Response Structs ---

type SelectProfileRequest struct {
	UserID string `json:"userId" binding:"required"`
}

type SelectProfileResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// --- Handler Methods ---

// SelectProfile godoc
// @Summary Select a local profile
// @Description Returns a profile token for the chosen user. No password is involved.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body SelectProfileRequest true "Profile to select"
// @Success 200 {object} SelectProfileResponse
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /session/profile [post]
func (h *SessionHandler) SelectProfile(c *gin.Context) {
	var req SelectProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	userID, ok := parseObjectID(c, "userId", req.UserID)
	if !ok {
		return
	}

	token, user, err := h.sessionService.SelectProfile(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, SelectProfileResponse{Success: true, Token: token, User: MapUserToResponse(user)})
}

// AdminLogin godoc
// @Summary Unlock the admin area
// @Description Checks the shared admin password and returns an admin token. Rate limited per IP.
// @Tags Session
// @Accept json
// @Produce json
// @Param request body AdminLoginRequest true "Admin password"
// @Success 200 {object} gin.H "success, token"
// @Failure 401 {object} gin.H "Incorrect password"
// @Failure 429 {object} gin.H "Too many attempts"
// @Router /session/admin [post]
func (h *SessionHandler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, err := h.sessionService.AdminLogin(c.Request.Context(), req.Password)
	if err != nil {
		h.logger.Warn("admin login rejected", "ip", c.ClientIP())
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"token": token})
}
