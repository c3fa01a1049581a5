package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleAttendee      Role = "attendee"
	RoleOrganizer     Role = "organizer"
	RoleAdministrator Role = "administrator"
)

// ParseRole maps a stored role string onto the closed Role set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAttendee, RoleOrganizer, RoleAdministrator:
		return Role(s), nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type User struct {
	ID          int64     `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	Role        Role      `json:"role" db:"role"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (u *User) IsAttendee() bool      { return u != nil && u.Role == RoleAttendee }
func (u *User) IsOrganizer() bool     { return u != nil && u.Role == RoleOrganizer }
func (u *User) IsAdministrator() bool { return u != nil && u.Role == RoleAdministrator }
