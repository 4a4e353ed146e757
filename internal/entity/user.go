package entity

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Username               string    `gorm:"size:180;uniqueIndex;not null" json:"username"`
	Email                  string    `gorm:"size:180;uniqueIndex;not null" json:"email"`
	PasswordHash           string    `gorm:"column:password;size:255;not null" json:"-"`
	Roles                  RoleSet   `gorm:"column:roles;type:jsonb;serializer:json;not null" json:"roles"`
	IsVerified             bool      `gorm:"not null;default:false" json:"is_verified"`
	IsActive               bool      `gorm:"not null;default:false" json:"is_active"`
	CreatedAt              time.Time `gorm:"not null" json:"created_at"`
	EmailVerificationToken *string   `gorm:"size:255;index" json:"-"`
}

// NewUser returns an unverified, inactive user stamped with the current time.
func NewUser(username, email string) *User {
	return &User{
		Username:  username,
		Email:     email,
		Roles:     RoleSet{},
		CreatedAt: time.Now(),
	}
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.Roles == nil {
		u.Roles = RoleSet{}
	}
	return nil
}

// Identifier is the value users log in with and the name written on their comments.
func (u *User) Identifier() string {
	return u.Email
}

func (u *User) GetRoles() []string {
	return u.Roles.All()
}

func (u *User) SetRoles(roles ...string) {
	u.Roles = RoleSet{}
	for _, role := range roles {
		if role != RoleUser {
			u.Roles.Add(role)
		}
	}
}

func (u *User) IsAdmin() bool {
	return u.Roles.Has(RoleAdmin)
}

// MarkVerified activates the account and consumes the verification token.
func (u *User) MarkVerified() {
	u.IsVerified = true
	u.IsActive = true
	u.EmailVerificationToken = nil
}
