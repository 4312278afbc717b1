package models

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// Roles known to the platform.
const (
	RoleAdmin        = "admin"
	RoleCollaborator = "collaborator"
	RoleCompany      = "company"
)

type User struct {
	ID              int        `json:"id"`
	Role            string     `json:"role"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Phone           string     `json:"phone"`
	Password        string     `json:"password,omitempty"`
	IsCommissioning bool       `json:"is_commissioning"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
}

type Claims struct {
	UserID         uint   `json:"user_id"`
	Role           string `json:"role"`
	CollaboratorID int    `json:"collaborator_id,omitempty"`
	jwt.StandardClaims
}

// ActingUser identifies who performs an operation. Handlers build it from the
// JWT claims; services authorize against it instead of reading the request.
type ActingUser struct {
	ID             int
	Role           string
	CollaboratorID int
}

func (a ActingUser) IsAdmin() bool { return a.Role == RoleAdmin }

type Session struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	Role         string    `json:"role"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
