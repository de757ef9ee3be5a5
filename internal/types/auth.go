package types

import "github.com/golang-jwt/jwt/v5"

const RoleUser = "user"

type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type RegisterRequest struct {
	Username string `json:"username" example:"johndoe"`
	Password string `json:"password" example:"s3cret!"`
	Email    string `json:"email,omitempty"`
	Name     string `json:"name,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username" example:"johndoe"`
	Password string `json:"password" example:"s3cret!"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  UserSummary `json:"user"`
}

type ValidateResponse struct {
	User UserSummary `json:"user"`
}
