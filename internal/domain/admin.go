package domain

import "time"

// Role names carried in session tokens.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

type Admin struct {
	ID           string    `json:"_id"`
	AdminID      string    `json:"adminId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
