package ports

import (
	"context"
	"time"
)

// NonceRecord is the stored challenge state for one address.
type NonceRecord struct {
	Nonce    string    `json:"nonce"`
	IssuedAt time.Time `json:"issued_at"`
}

// NonceStore holds at most one active challenge nonce per address.
// A Put for an address that already has a record overwrites it,
// invalidating any previously issued unconsumed challenge.
type NonceStore interface {
	// Put stores or overwrites the record for the address with the current time.
	Put(ctx context.Context, address, nonce string) error

	// Get returns the record for the address, or core.ErrUnknownNonce if absent.
	Get(ctx context.Context, address string) (NonceRecord, error)

	// Remove deletes the record for the address if present.
	Remove(ctx context.Context, address string) error

	// Consume deletes the record only if it still holds the given nonce and
	// reports whether this caller won the deletion. The check and the delete
	// are atomic with respect to concurrent Consume calls.
	Consume(ctx context.Context, address, nonce string) (bool, error)

	// Sweep deletes all records older than ttl.
	Sweep(ctx context.Context, ttl time.Duration) error
}
