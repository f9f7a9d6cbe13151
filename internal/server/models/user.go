// Package models defines the data models of the credential service: stored
// rows, already-validated request inputs and response aggregates.
package models

// User is the public identity record. Role is optional.
type User struct {
	ID    int64   `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Email string  `db:"email" json:"email"`
	Role  *string `db:"role" json:"role,omitempty"`
}

// UserWithPassword is a users row including the password hash. It never
// leaves the credential store.
type UserWithPassword struct {
	User
	PasswordHash string `db:"password_hash"`
}

// NewUser is the registration input.
type NewUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser is the login input.
type LoginUser struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RoleOrEmpty returns the role, or "" when none is set.
func (u *User) RoleOrEmpty() string {
	if u == nil || u.Role == nil {
		return ""
	}
	return *u.Role
}
