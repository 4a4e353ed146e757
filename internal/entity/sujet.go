package entity

import (
	"time"

	"gorm.io/gorm"
)

// Sujet is a discussion subject filed under a category.
type Sujet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"size:255;not null" json:"name"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Category   *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"category,omitempty"`
}

func NewSujet(name string) *Sujet {
	return &Sujet{Name: name, CreatedAt: time.Now()}
}

func (s *Sujet) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return nil
}

// AttachTo files the subject under category. Calling it again with the same
// category changes nothing.
func (s *Sujet) AttachTo(category *Category) {
	if category == nil {
		s.Detach()
		return
	}
	s.Category = category
	s.CategoryID = category.ID
}

func (s *Sujet) Detach() {
	s.Category = nil
	s.CategoryID = 0
}

func (s *Sujet) BelongsTo(category *Category) bool {
	return category != nil && s.CategoryID == category.ID
}
