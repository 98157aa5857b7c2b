package api

import (
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// ProgressHandler serves watch progress for the selected profile.
type ProgressHandler struct {
	progressService service.ProgressService
	logger          *log.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService, logger *log.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, logger: logger}
}

// --- Request Structs ---

type LessonRefRequest struct {
	CourseID string `json:"courseId" binding:"required"`
	LessonID string `json:"lessonId" binding:"required"`
}

type PlaybackRequest struct {
	CourseID string             `json:"courseId" binding:"required"`
	LessonID string             `json:"lessonId" binding:"required"`
	State    domain.PlayerState `json:"state" binding:"required,oneof=playing paused ended"`
	Position float64            `json:"position" binding:"min=0"`
}

type PositionRequest struct {
	CourseID string  `json:"courseId" binding:"required"`
	LessonID string  `json:"lessonId" binding:"required"`
	SeekTo   float64 `json:"seekTo" binding:"min=0"`
}

type LastWatchedRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
}

// --- Handler Methods ---

// GetWatched godoc
// @Summary Watched lesson IDs of the selected profile
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} gin.H "watchedLessonIds"
// @Router /me/progress [get]
func (h *ProgressHandler) GetWatched(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	ids, err := h.progressService.GetWatchedLessonIDs(c.Request.Context(), session.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"watchedLessonIds": ids})
}

// GetSummary godoc
// @Summary Completion totals and lessons watched today
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ProgressSummary
// @Router /me/progress/summary [get]
func (h *ProgressHandler) GetSummary(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	summary, err := h.progressService.GetProgressSummary(c.Request.Context(), session.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// MarkWatched godoc
// @Summary Mark a lesson as watched
// @Tags Progress
// @Accept json
// @Security BearerAuth
// @Param request body LessonRefRequest true "Lesson"
// @Success 200 {object} gin.H "success"
// @Router /me/progress/watched [post]
func (h *ProgressHandler) MarkWatched(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req LessonRefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	courseID, ok := parseObjectID(c, "courseId", req.CourseID)
	if !ok {
		return
	}
	if err := h.progressService.MarkWatched(c.Request.Context(), session.UserID, courseID, req.LessonID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// ReportPlayback godoc
// @Summary Report a player state change
// @Description "ended" marks the lesson watched; "playing" and "paused" save the position.
// @Tags Progress
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body PlaybackRequest true "Player event"
// @Success 200 {object} gin.H "success, progress"
// @Router /me/progress/playback [post]
func (h *ProgressHandler) ReportPlayback(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req PlaybackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	courseID, ok := parseObjectID(c, "courseId", req.CourseID)
	if !ok {
		return
	}
	result, err := h.progressService.ReportPlayback(c.Request.Context(), session.UserID, courseID, req.LessonID, req.State, req.Position)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"progress": result})
}

// UpdatePosition godoc
// @Summary Save the playback position of a lesson
// @Tags Progress
// @Accept json
// @Security BearerAuth
// @Param request body PositionRequest true "Position"
// @Success 200 {object} gin.H "success"
// @Router /me/progress/position [put]
func (h *ProgressHandler) UpdatePosition(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	courseID, ok := parseObjectID(c, "courseId", req.CourseID)
	if !ok {
		return
	}
	if err := h.progressService.UpdateLessonProgress(c.Request.Context(), session.UserID, courseID, req.LessonID, req.SeekTo); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// GetLastWatched godoc
// @Summary Last watched lesson of a course
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} gin.H "lastWatchedLessonId (null when none)"
// @Router /me/courses/{courseId}/last-watched [get]
func (h *ProgressHandler) GetLastWatched(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	lessonID, err := h.progressService.GetLastWatchedLessonID(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastWatchedLessonId": lessonID})
}

// SetLastWatched godoc
// @Summary Remember the lesson the profile is on
// @Tags Progress
// @Accept json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Param request body LastWatchedRequest true "Lesson"
// @Success 200 {object} gin.H "success"
// @Router /me/courses/{courseId}/last-watched [put]
func (h *ProgressHandler) SetLastWatched(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	var req LastWatchedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	if err := h.progressService.SetLastWatchedLesson(c.Request.Context(), session.UserID, courseID, req.LessonID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// GetResume godoc
// @Summary Where to resume a course
// @Tags Progress
// @Produce json
// @Security BearerAuth
// @Param courseId path string true "Course ID"
// @Success 200 {object} service.ResumeState "null when the course does not exist"
// @Router /me/courses/{courseId}/resume [get]
func (h *ProgressHandler) GetResume(c *gin.Context) {
	session, ok := mustSession(c)
	if !ok {
		return
	}
	courseID, ok := parseObjectIDParam(c, "courseId")
	if !ok {
		return
	}
	state, err := h.progressService.GetResumeState(c.Request.Context(), session.UserID, courseID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// GetAllProgress godoc
// @Summary Watched lesson IDs of every profile (admin)
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]string
// @Router /admin/progress [get]
func (h *ProgressHandler) GetAllProgress(c *gin.Context) {
	all, err := h.progressService.GetAllProgress(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, all)
}

// mustSession fetches the session or aborts with 500.
func mustSession(c *gin.Context) (*service.Session, bool) {
	session, err := getSession(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return session, true
}
