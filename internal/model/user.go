package model

import "time"

// Default roles stored in users.role.  Every self-registered account is a
// RoleUser; the seeded demo account is a RoleAdmin.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an application user record as stored in the
// `users` table.  Handlers never serialise this struct directly;
// they convert it with Public() so the password hash stays on the
// server.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique login handle.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	Role         – role name (user or admin).
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password
	Role         string    // users.role
	CreatedAt    time.Time // users.created_at
}

// PublicUser is the user record as returned by login and /auth/me.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Public strips the password hash and timestamps.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
