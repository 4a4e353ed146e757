package entity

import (
	"time"
)

const AnonymousAuthor = "Anonyme"

type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	Author     string    `gorm:"size:255;not null" json:"author"`
	Date       time.Time `gorm:"not null;index" json:"date"`
	SubjectID  uint      `gorm:"not null;index" json:"subject_id"`
	Subject    *Sujet    `gorm:"foreignKey:SubjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"subject,omitempty"`
	UserID     *uint     `gorm:"index" json:"user_id,omitempty"`
	AuthorUser *User     `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"-"`
}

// NewComment builds a comment written now. A nil author posts anonymously.
func NewComment(text string, author *User) *Comment {
	c := &Comment{Text: text, Date: time.Now()}
	c.SetAuthorUser(author)
	return c
}

func (c *Comment) SetAuthorUser(user *User) {
	c.AuthorUser = user
	if user == nil {
		c.UserID = nil
		if c.Author == "" {
			c.Author = AnonymousAuthor
		}
		return
	}
	id := user.ID
	c.UserID = &id
	c.Author = user.Identifier()
}

func (c *Comment) AttachTo(sujet *Sujet) {
	if sujet == nil {
		c.Detach()
		return
	}
	c.Subject = sujet
	c.SubjectID = sujet.ID
}

func (c *Comment) Detach() {
	c.Subject = nil
	c.SubjectID = 0
}

// IsOwnedBy reports whether identifier wrote the comment.
func (c *Comment) IsOwnedBy(identifier string) bool {
	return identifier != "" && c.Author == identifier
}
