// Package testutil provides fakes shared by service and HTTP tests.
package testutil

import (
	"context"
	"sync"
	"testing"

	"anoa.com/communityforum/internal/entity"
	"anoa.com/communityforum/pkg/mailer"
	"golang.org/x/crypto/bcrypt"
)

// MailRecorder keeps every message instead of sending it.
type MailRecorder struct {
	mu       sync.Mutex
	messages []mailer.Message
	Err      error
}

func (r *MailRecorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.messages = append(r.messages, msg)
	return nil
}

func (r *MailRecorder) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.messages...)
}

func (r *MailRecorder) Last() (mailer.Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return mailer.Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}

// PwnedList reports the listed passwords as compromised.
type PwnedList map[string]bool

func (p PwnedList) IsCompromised(_ context.Context, password string) (bool, error) {
	return p[password], nil
}

func HashPassword(t testing.TB, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}

// ActiveUser builds a verified, active user with the given password.
func ActiveUser(t testing.TB, username, email, password string, roles ...string) *entity.User {
	t.Helper()
	u := entity.NewUser(username, email)
	u.PasswordHash = HashPassword(t, password)
	u.IsActive = true
	u.IsVerified = true
	u.SetRoles(roles...)
	return u
}
