package models

// Role is the authorization role of a back-office user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

func (r Role) Valid() bool { return r == RoleAdmin || r == RoleStaff }

// AdminUser is a back-office account.
type AdminUser struct {
	Base

	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name,omitempty"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // bcrypt, never exposed in JSON
	Role         Role   `gorm:"size:20;not null" json:"role"`
}
