package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/layer-3/faucet/core"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokenizer(t *testing.T) *JWTTokenizer {
	t.Helper()

	tok, err := NewJWTTokenizer([]byte(testSecret), "faucet-api", "faucet-app")
	require.NoError(t, err)
	return tok
}

func TestNewJWTTokenizer_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewJWTTokenizer([]byte("too-short"), "faucet-api", "faucet-app")
	require.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	tok := newTestTokenizer(t)

	now := time.Now().UTC().Truncate(time.Second)
	session := &core.Session{
		ID:        "session-1",
		Address:   "0xAbCd000000000000000000000000000000001234",
		IssuedAt:  now,
		ExpiresAt: now.Add(24 * time.Hour),
	}

	token, err := tok.SessionToToken(session)
	require.NoError(t, err)

	got, err := tok.TokenToSession(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", got.ID)
	require.Equal(t, "0xabcd000000000000000000000000000000001234", got.Address)
	require.WithinDuration(t, session.IssuedAt, got.IssuedAt, time.Second)
	require.WithinDuration(t, session.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestTokenToSession_Expired(t *testing.T) {
	t.Parallel()

	tok := newTestTokenizer(t)

	now := time.Now().UTC()
	session := &core.Session{
		ID:        "session-1",
		Address:   "0xabcd000000000000000000000000000000001234",
		IssuedAt:  now.Add(-25 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}

	token, err := tok.SessionToToken(session)
	require.NoError(t, err)

	_, err = tok.TokenToSession(token)
	require.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestTokenToSession_WrongSecret(t *testing.T) {
	t.Parallel()

	tok := newTestTokenizer(t)

	other, err := NewJWTTokenizer([]byte("ffffffffffffffffffffffffffffffff"), "faucet-api", "faucet-app")
	require.NoError(t, err)

	now := time.Now().UTC()
	session := &core.Session{
		ID:        "session-1",
		Address:   "0xabcd000000000000000000000000000000001234",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	token, err := other.SessionToToken(session)
	require.NoError(t, err)

	_, err = tok.TokenToSession(token)
	require.ErrorIs(t, err, core.ErrUnauthenticated)
}

func TestTokenToSession_WrongIssuerOrAudience(t *testing.T) {
	t.Parallel()

	tok := newTestTokenizer(t)

	now := time.Now().UTC()
	session := &core.Session{
		ID:        "session-1",
		Address:   "0xabcd000000000000000000000000000000001234",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	cases := []struct {
		name     string
		issuer   string
		audience string
	}{
		{"wrong_issuer", "someone-else", "faucet-app"},
		{"wrong_audience", "faucet-api", "other-app"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			other, err := NewJWTTokenizer([]byte(testSecret), tc.issuer, tc.audience)
			require.NoError(t, err)

			token, err := other.SessionToToken(session)
			require.NoError(t, err)

			_, err = tok.TokenToSession(token)
			require.ErrorIs(t, err, core.ErrUnauthenticated)
		})
	}
}

func TestTokenToSession_Garbage(t *testing.T) {
	t.Parallel()

	tok := newTestTokenizer(t)

	_, err := tok.TokenToSession("not.a.jwt")
	require.ErrorIs(t, err, core.ErrUnauthenticated)
}
