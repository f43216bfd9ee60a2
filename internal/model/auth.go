package model

import "time"

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
	Token    string `json:"token"`
}

// AuthUser is the identity carried by a verified session token.
type AuthUser struct {
	Username string
	Email    string
}

type User struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
