package models

import "time"

// Group names carried in the users' group memberships and in access token claims.
const (
	GroupTeachers = "Teachers"
	GroupStudents = "Students"
)

// User represents an application user stored in the users table.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	FirstName    string     `db:"first_name" json:"first_name"`
	LastName     string     `db:"last_name" json:"last_name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	IsStaff      bool       `db:"is_staff" json:"is_staff"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	DateJoined   time.Time  `db:"date_joined" json:"date_joined"`
	Groups       []string   `db:"-" json:"groups"`
}

// HasGroup reports whether the user belongs to the named group.
func (u User) HasGroup(name string) bool {
	return containsGroup(u.Groups, name)
}

func containsGroup(groups []string, name string) bool {
	for _, g := range groups {
		if g == name {
			return true
		}
	}
	return false
}
