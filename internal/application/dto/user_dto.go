package dto

import "time"

// LoginRequest quick login by PIN, or username + password.
type LoginRequest struct {
	PIN      string `json:"pin"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse JWT plus the logged-in user.
type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// UserResponse user without credentials.
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	HasPIN    bool      `json:"has_pin"`
	BranchIDs []uint    `json:"branch_ids"`
	CreatedAt time.Time `json:"created_at"`
}

// MeResponse current user and the branches they can open.
type MeResponse struct {
	User     UserResponse     `json:"user"`
	Branches []BranchResponse `json:"branches"`
}

// CreateUserRequest admin input for a new account.
type CreateUserRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	PIN       string `json:"pin"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	BranchIDs []uint `json:"branch_ids"`
}

// UpdateUserRequest partial update; nil fields are left alone. An empty PIN removes it.
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	Password  *string `json:"password"`
	PIN       *string `json:"pin"`
	Name      *string `json:"name"`
	Role      *string `json:"role"`
	BranchIDs *[]uint `json:"branch_ids"`
}

// UserListResponse all accounts.
type UserListResponse struct {
	Items []UserResponse `json:"items"`
}
