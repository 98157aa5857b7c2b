package api

import (
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the profile picker and the current profile.
type UserHandler struct {
	userService service.UserService
	logger      *log.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService, logger *log.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// --- Request/Response Structs ---

type AddUserRequest struct {
	Name string `json:"name" binding:"required,max=64"`
}

type UpdateUserRequest struct {
	Name   string `json:"name" binding:"required,max=64"`
	Avatar string `json:"avatar" binding:"omitempty,url"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

// --- Handler Methods ---

// ListUsers godoc
// @Summary List profiles
// @Tags Users
// @Produce json
// @Success 200 {array} UserResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = MapUserToResponse(&users[i])
	}
	c.JSON(http.StatusOK, resp)
}

// AddUser godoc
// @Summary Add a profile
// @Tags Users
// @Accept json
// @Produce json
// @Param request body AddUserRequest true "Profile name"
// @Success 201 {object} gin.H "success, user"
// @Failure 400 {object} gin.H "Invalid input"
// @Router /users [post]
func (h *UserHandler) AddUser(c *gin.Context) {
	var req AddUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	user, err := h.userService.AddUser(c.Request.Context(), req.Name)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, gin.H{"user": MapUserToResponse(user)})
}

// GetMe godoc
// @Summary Get the selected profile
// @Tags Me
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	user, err := h.userService.GetUser(c.Request.Context(), session.UserID)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// UpdateMe godoc
// @Summary Rename the selected profile or change its avatar
// @Tags Me
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateUserRequest true "New profile fields"
// @Success 200 {object} gin.H "success, user"
// @Router /me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), session.UserID, req.Name, req.Avatar)
	if err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"user": MapUserToResponse(user)})
}

// DeleteMe godoc
// @Summary Delete the selected profile with its progress and routine
// @Tags Me
// @Security BearerAuth
// @Success 200 {object} gin.H "success"
// @Router /me [delete]
func (h *UserHandler) DeleteMe(c *gin.Context) {
	session, err := getSession(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), session.UserID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// DeleteUser godoc
// @Summary Delete any profile (admin)
// @Tags Admin
// @Security BearerAuth
// @Param userId path string true "User ID"
// @Success 200 {object} gin.H "success"
// @Failure 404 {object} gin.H "Profile not found"
// @Router /admin/users/{userId} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := parseObjectIDParam(c, "userId")
	if !ok {
		return
	}
	if err := h.userService.DeleteUser(c.Request.Context(), userID); err != nil {
		handleServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil)
}

// MapUserToResponse converts a domain User to a UserResponse DTO.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.Hex(),
		Name:      user.Name,
		Avatar:    user.Avatar,
		CreatedAt: user.CreatedAt,
	}
}
