package domain

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role distinguishes the two kinds of session token.
type Role string

const (
	RoleProfile Role = "profile" // A selected local profile, not an authenticated account
	RoleAdmin   Role = "admin"   // Holder of the shared admin password
)

// User is a local profile. Selecting one is a pointer, not a login.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Avatar    string             `bson:"avatar" json:"avatar"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DefaultAvatarURL builds a placeholder avatar showing the first letter of the name.
func DefaultAvatarURL(name string) string {
	initial := ""
	if r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name)); r != utf8.RuneError {
		initial = strings.ToUpper(string(r))
	}
	return "https://placehold.co/100x100.png?text=" + url.QueryEscape(initial)
}
