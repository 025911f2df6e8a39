package core

import "errors"

var (
	ErrInvalidAddress   = errors.New("invalid ethereum address")
	ErrMalformedMessage = errors.New("malformed challenge message")
	ErrUnknownNonce     = errors.New("unknown or consumed nonce")
	ErrNonceMismatch    = errors.New("nonce mismatch")
	ErrChallengeExpired = errors.New("challenge has expired")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrUnauthenticated  = errors.New("missing or invalid session token")
	ErrAlreadyClaimed   = errors.New("address has already claimed")
	ErrFaucetExhausted  = errors.New("faucet pool is exhausted")
	ErrClaimFailed      = errors.New("claim failed")
	ErrRateLimited      = errors.New("rate limit exceeded")
)
