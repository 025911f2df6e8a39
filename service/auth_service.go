package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	siwe "github.com/spruceid/siwe-go"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// nonceBytes is the entropy of a challenge nonce before hex encoding.
const nonceBytes = 16

// ChallengeConfig carries the static fields stamped into every challenge
// message and the lifetimes of challenges and sessions.
type ChallengeConfig struct {
	Domain       string
	URI          string
	Statement    string
	ChainID      int
	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// AuthService handles the sign-in protocol: challenge issuance, signed
// message verification and session minting.
type AuthService struct {
	store     ports.NonceStore
	tokenizer ports.Tokenizer
	cfg       ChallengeConfig
	log       *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(store ports.NonceStore, tokenizer ports.Tokenizer, cfg ChallengeConfig, log *slog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		tokenizer: tokenizer,
		cfg:       cfg,
		log:       log,
	}
}

// Challenge issues a new sign-in challenge for the address. Any prior
// unconsumed challenge for the same address is silently invalidated: the
// store keeps at most one active nonce per address, last write wins.
func (s *AuthService) Challenge(ctx context.Context, address string) (*core.Challenge, error) {
	if !addressPattern.MatchString(address) {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAddress, address)
	}

	nonceBuf := make([]byte, nonceBytes)
	if _, err := rand.Read(nonceBuf); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(nonceBuf)

	now := time.Now().UTC()
	expiresAt := now.Add(s.cfg.ChallengeTTL)

	msg, err := siwe.InitMessage(s.cfg.Domain, address, s.cfg.URI, nonce, map[string]interface{}{
		"statement":      s.cfg.Statement,
		"chainId":        s.cfg.ChainID,
		"issuedAt":       now.Format(time.RFC3339),
		"expirationTime": expiresAt.Format(time.RFC3339),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build challenge message: %w", err)
	}

	if err := s.store.Put(ctx, strings.ToLower(address), nonce); err != nil {
		return nil, fmt.Errorf("failed to store nonce: %w", err)
	}

	return &core.Challenge{
		Address:   strings.ToLower(address),
		Nonce:     nonce,
		Message:   msg.String(),
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	}, nil
}

// SignIn verifies a signed challenge message and mints a session token.
// Checks run in a fixed order so every failure maps to one distinct cause:
// parse, nonce lookup, nonce match, challenge age, signature, consumption.
// The nonce is consumed atomically as the final step, so a replay of the
// same message and signature fails at the lookup.
func (s *AuthService) SignIn(ctx context.Context, rawMessage, signature string) (string, string, error) {
	msg, err := siwe.ParseMessage(canonicalize(rawMessage))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", core.ErrMalformedMessage, err)
	}

	address := strings.ToLower(msg.GetAddress().Hex())

	rec, err := s.store.Get(ctx, address)
	if err != nil {
		return "", "", err
	}

	if msg.GetNonce() != rec.Nonce {
		return "", "", core.ErrNonceMismatch
	}

	if time.Since(rec.IssuedAt) > s.cfg.ChallengeTTL {
		if removeErr := s.store.Remove(ctx, address); removeErr != nil {
			s.log.Warn("failed to remove stale nonce", "address", address, "err", removeErr)
		}
		return "", "", core.ErrChallengeExpired
	}

	if _, err := msg.VerifyEIP191(signature); err != nil {
		return "", "", fmt.Errorf("%w: %v", core.ErrInvalidSignature, err)
	}

	consumed, err := s.store.Consume(ctx, address, rec.Nonce)
	if err != nil {
		return "", "", fmt.Errorf("failed to consume nonce: %w", err)
	}
	if !consumed {
		// A concurrent sign-in for the same address got there first.
		return "", "", core.ErrUnknownNonce
	}

	now := time.Now().UTC()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   address,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}

	token, err := s.tokenizer.SessionToToken(session)
	if err != nil {
		return "", "", fmt.Errorf("failed to create session token: %w", err)
	}

	s.log.Info("sign-in succeeded", "address", address, "session_id", session.ID)
	return token, address, nil
}

// canonicalize strips trailing whitespace from every line and surrounding
// whitespace from the whole message, so incidental padding added by clients
// does not break parsing. Issued messages are already in this form, which
// keeps the build/parse round trip exact.
func canonicalize(raw string) string {
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
