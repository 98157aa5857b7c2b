package api

import (
	"errors"
	"lessonhub/internal/domain"
	"lessonhub/internal/service"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextSessionKey holds the *service.Session of the current request.
const ContextSessionKey = "session"

// AuthMiddleware validates the bearer token and stores the session in the context.
func AuthMiddleware(sessions service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		// Expecting "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}

		session, err := sessions.ParseToken(parts[1])
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, err.Error())
			return
		}

		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

// RoleMiddleware checks the session role. Must run AFTER AuthMiddleware.
func RoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := getSession(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}

		for _, allowedRole := range allowedRoles {
			if session.Role == allowedRole {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, "Access denied for role '"+string(session.Role)+"'")
	}
}

// ProfileExistsMiddleware rejects profile tokens whose user was deleted.
// Must run AFTER AuthMiddleware and RoleMiddleware(domain.RoleProfile).
func ProfileExistsMiddleware(users service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := getSession(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, err.Error())
			return
		}
		if _, err := users.GetUser(c.Request.Context(), session.UserID); err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				abortWithError(c, http.StatusUnauthorized, "Selected profile no longer exists")
				return
			}
			abortWithError(c, http.StatusInternalServerError, "Could not load profile")
			return
		}
		c.Next()
	}
}

// Helper function to get the session from context (used by handlers)
func getSession(c *gin.Context) (*service.Session, error) {
	raw, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, errors.New("session not found in context")
	}
	session, ok := raw.(*service.Session)
	if !ok {
		return nil, errors.New("invalid session type in context")
	}
	return session, nil
}
