// Package identity authorizes requests carrying a session bearer token.
package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextSessionClaims is the key used to store token claims in the Gin context.
	ContextSessionClaims = "sessionClaims"

	// ClaimSessionID names the claim holding the session a token grants access to.
	ClaimSessionID = "sessionID"
)

// Authoriz rejects requests without a valid bearer token and stores the
// token's claims in the context.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "malformed authorization header"})
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(ContextSessionClaims, claims)
		c.Next()
	}
}

// SessionID returns the session claim of an authorized request.
func SessionID(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextSessionClaims)
	if !ok {
		return "", false
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		return "", false
	}
	id, ok := claims[ClaimSessionID].(string)
	return id, ok
}
