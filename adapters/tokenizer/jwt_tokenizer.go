package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// MinSecretLen is the minimum byte length accepted for the signing secret.
const MinSecretLen = 32

// JWTTokenizer implements the Tokenizer interface using HS256 JWTs
// signed with a server secret.
type JWTTokenizer struct {
	secret   []byte
	issuer   string
	audience string
}

// NewJWTTokenizer creates a new JWT tokenizer. The secret must be at least
// MinSecretLen bytes.
func NewJWTTokenizer(secret []byte, issuer, audience string) (*JWTTokenizer, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}

	return &JWTTokenizer{
		secret:   secret,
		issuer:   issuer,
		audience: audience,
	}, nil
}

// SessionToToken converts a Session to a signed JWT string
func (j *JWTTokenizer) SessionToToken(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(session.Address),
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			Issuer:    j.issuer,
			Audience:  jwt.ClaimStrings{j.audience},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// TokenToSession parses and validates a JWT string and returns the session
// it represents. Any failure, including expiry, wrong signing method or
// wrong issuer/audience, maps to core.ErrUnauthenticated.
func (j *JWTTokenizer) TokenToSession(tokenStr string) (*core.Session, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(j.issuer),
		jwt.WithAudience(j.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: token expired", core.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid claims", core.ErrUnauthenticated)
	}
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing time claims", core.ErrUnauthenticated)
	}

	session := &core.Session{
		ID:        claims.ID,
		Address:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}

	return session, nil
}

var _ ports.Tokenizer = (*JWTTokenizer)(nil)
