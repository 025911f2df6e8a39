package tokenizer

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the claims carried by a session token. The subject is
// the lowercase wallet address; the ID is the session identifier.
type SessionClaims struct {
	jwt.RegisteredClaims
}
