package entity

import (
	"time"
)

type ResetPasswordRequest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        *User     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Selector    string    `gorm:"size:20;uniqueIndex;not null" json:"-"`
	HashedToken string    `gorm:"size:100;not null" json:"-"`
	RequestedAt time.Time `gorm:"not null" json:"requested_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
}

func NewResetPasswordRequest(user *User, expiresAt time.Time, selector, hashedToken string) *ResetPasswordRequest {
	return &ResetPasswordRequest{
		UserID:      user.ID,
		User:        user,
		Selector:    selector,
		HashedToken: hashedToken,
		RequestedAt: time.Now(),
		ExpiresAt:   expiresAt,
	}
}

// IsExpired treats the exact expiry instant as expired.
func (r *ResetPasswordRequest) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

func (r *ResetPasswordRequest) IsExpiredNow() bool {
	return r.IsExpired(time.Now())
}
