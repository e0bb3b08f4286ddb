package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCallCenter Role = "call_center"
	RoleReception  Role = "reception"
	RolePending    Role = "pending"
)

// User represents a staff member in the system. OpenID is the external
// identity key; a user stays pending/unapproved until an admin assigns a role.
type User struct {
	BaseModel
	OpenID       string    `gorm:"uniqueIndex;size:64;not null" json:"openId"`
	Name         string    `gorm:"size:255" json:"name"`
	Email        string    `gorm:"size:320" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	DisplayName  string    `gorm:"size:255" json:"displayName"`
	Role         Role      `gorm:"size:20;default:'pending'" json:"role"`
	IsApproved   bool      `gorm:"default:false" json:"isApproved"`
	LastSignedIn time.Time `json:"lastSignedIn"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	CreatedAppointments []Appointment  `gorm:"foreignKey:CreatedByID" json:"-"`
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID           uint      `json:"id"`
	OpenID       string    `json:"openId"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"displayName"`
	Role         Role      `json:"role"`
	IsApproved   bool      `json:"isApproved"`
	LastSignedIn time.Time `json:"lastSignedIn"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// StaffName is the name stamped onto appointments this user creates.
func (u *User) StaffName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Name != "" {
		return u.Name
	}
	return "Unknown"
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:           u.ID,
		OpenID:       u.OpenID,
		Name:         u.Name,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		Role:         u.Role,
		IsApproved:   u.IsApproved,
		LastSignedIn: u.LastSignedIn,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
