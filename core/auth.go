package core

import "time"

// Challenge represents a sign-in challenge issued for a wallet address
type Challenge struct {
	Address   string    // Ethereum address of the user, lowercase hex
	Nonce     string    // Random nonce embedded in the signed message
	Message   string    // Canonical message text presented to the wallet
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// Session represents an authenticated user session
type Session struct {
	ID        string    // Unique session identifier
	Address   string    // Ethereum address of the user, lowercase hex
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}
