// Package csrf issues per-session tokens for state-changing forms.
package csrf

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"

	"anoa.com/communityforum/pkg/session"
	"github.com/gin-gonic/gin"
)

const FormField = "_token"

type Guard struct {
	secret []byte
}

func NewGuard(secret string) *Guard {
	return &Guard{secret: []byte(secret)}
}

// Token derives the token for scope and id inside the given session.
func (g *Guard) Token(sessionID, scope string, id uint) string {
	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{0})
	mac.Write([]byte(scope + "_" + strconv.FormatUint(uint64(id), 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

func (g *Guard) Verify(sessionID, scope string, id uint, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	expected := g.Token(sessionID, scope, id)
	return hmac.Equal([]byte(expected), []byte(token))
}

// TokenFor is Token bound to the request session.
func (g *Guard) TokenFor(c *gin.Context, scope string, id uint) string {
	return g.Token(session.Get(c).ID(), scope, id)
}

// Tokens returns one token per id, keyed by id, for list pages.
func (g *Guard) Tokens(c *gin.Context, scope string, ids ...uint) map[uint]string {
	sid := session.Get(c).ID()
	tokens := make(map[uint]string, len(ids))
	for _, id := range ids {
		tokens[id] = g.Token(sid, scope, id)
	}
	return tokens
}

// Valid checks the submitted _token form field against the request session.
func (g *Guard) Valid(c *gin.Context, scope string, id uint) bool {
	return g.Verify(session.Get(c).ID(), scope, id, c.PostForm(FormField))
}
