package api

import (
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// RoutineHandler serves the weekly study routine of the selected profile.
type RoutineHandler struct {
	routineService service.RoutineService
	logger         *log.Logger
}

// NewRoutineHandler creates a new RoutineHandler.
func NewRoutineHandler(routineService service.RoutineService, logger *log.Logger) *RoutineHandler {
	return &RoutineHandler{routineService: routineService, logger: logger}
}

type SaveRoutineRequest struct {
	Schedule domain.Schedule `json:"schedule" binding:"required"`
}

// GetRoutine godoc
// @Summary Get the weekly routine (empty template when none is saved)
// @Tags Routine
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "schedule"
// @Router /me/routine [get]
func (h *RoutineHandler) GetRoutine(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	schedule, err := h.routineService.GetRoutine(c.Request.Context(), session.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"schedule": schedule})
}

// SaveRoutine godoc
// @Summary Overwrite the weekly routine
// @Tags Routine
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SaveRoutineRequest true "Full schedule"
// @Success 200 {object} gin.H "success, schedule"
// @Failure 400 {object} gin.H "Unknown day or malformed time"
// @Router /me/routine [put]
func (h *RoutineHandler) SaveRoutine(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req SaveRoutineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	schedule, err := h.routineService.SaveRoutine(c.Request.Context(), session.UserID, req.Schedule)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"schedule": schedule})
}

// ResetRoutine godoc
// @Summary Delete the weekly routine
// @Tags Routine
// @Security BearerAuth
// @Success 200 {object} gin.H "success"
// @Router /me/routine [delete]
func (h *RoutineHandler) ResetRoutine(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	if err := h.routineService.ResetRoutine(c.Request.Context(), session.UserID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}
