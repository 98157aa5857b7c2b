package service

import (
	"context"
	"errors"
	"fmt"
	"lessonhub/internal/domain"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAdminLoginFailed = errors.New("incorrect admin password")
	ErrTokenGeneration  = errors.New("failed to generate session token")
	ErrInvalidToken     = errors.New("invalid or expired session token")
)

const tokenIssuer = "lessonhub"

// Session is the explicit "current profile" object passed to handlers.
type Session struct {
	UserID primitive.ObjectID // Nil for admin sessions
	Role   domain.Role
}

// IsAdmin reports whether the session was opened with the admin password.
func (s Session) IsAdmin() bool {
	return s.Role == domain.RoleAdmin
}

// --- Service Interface ---
type SessionService interface {
	// SelectProfile picks a local profile and returns a profile token for it.
	SelectProfile(ctx context.Context, userID primitive.ObjectID) (token string, user *domain.User, err error)
	// AdminLogin checks the shared password and returns an admin token.
	AdminLogin(ctx context.Context, password string) (token string, err error)
	// ParseToken validates a token and returns the session it carries.
	ParseToken(token string) (*Session, error)
}

// --- Service Implementation ---

// sessionService implements the SessionService interface.
type sessionService struct {
	users         UserService
	adminHash     []byte
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewSessionService creates a new instance of sessionService. The admin password
// is hashed once here and never kept in memory as plain text.
func NewSessionService(users UserService, adminPassword, jwtSecret string, jwtExpiration time.Duration) (SessionService, error) {
	if jwtSecret == "" {
		return nil, errors.New("JWT secret cannot be empty")
	}
	if adminPassword == "" {
		return nil, errors.New("admin password cannot be empty")
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &sessionService{
		users:         users,
		adminHash:     hash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}, nil
}

func (s *sessionService) SelectProfile(ctx context.Context, userID primitive.ObjectID) (string, *domain.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return "", nil, err
	}
	token, err := s.generateJWT(user.ID.Hex(), domain.RoleProfile)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return token, user, nil
}

func (s *sessionService) AdminLogin(ctx context.Context, password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)); err != nil {
		return "", ErrAdminLoginFailed
	}
	token, err := s.generateJWT("", domain.RoleAdmin)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return token, nil
}

func (s *sessionService) ParseToken(tokenString string) (*Session, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	session := &Session{Role: claims.Role}
	switch claims.Role {
	case domain.RoleAdmin:
	case domain.RoleProfile:
		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		session.UserID = id
	default:
		return nil, ErrInvalidToken
	}
	return session, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid,omitempty"` // Selected profile, empty for admin
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *sessionService) generateJWT(userID string, role domain.Role) (string, error) {
	issuedAt := time.Now()
	claims := &jwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.jwtExpiration)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			Issuer:    tokenIssuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
