package user

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"  // Manages groups, time slots and presence
	RoleMember Role = "member" // Signs own attendances
)

type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash *string
	AppleID      *string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user can manage time slots and attendances
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Summary is the public projection of a user embedded in other resources.
type Summary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (u *User) Summary() Summary {
	return Summary{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      Role      `json:"role"`
	HasApple  bool      `json:"has_apple_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) Response() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		HasApple:  u.AppleID != nil,
		CreatedAt: u.CreatedAt,
	}
}
