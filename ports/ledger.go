package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// Ledger is the source of truth for token balances and claim status.
// Claim must be an atomic check-and-set: for a given address exactly one
// concurrent Claim may succeed, all others fail with core.ErrAlreadyClaimed.
type Ledger interface {
	// HasClaimed reports whether the address has already received its allocation.
	HasClaimed(ctx context.Context, address string) (bool, error)

	// Claim transfers the faucet allocation to the address and returns a
	// transaction reference. Fails with core.ErrAlreadyClaimed or
	// core.ErrFaucetExhausted when applicable.
	Claim(ctx context.Context, address string) (string, error)

	// BalanceOf returns the token balance of the address.
	BalanceOf(ctx context.Context, address string) (decimal.Decimal, error)

	// ClaimedCount returns the number of addresses that have claimed.
	ClaimedCount(ctx context.Context) (int64, error)

	// FaucetAmount returns the allocation dispensed per claim.
	FaucetAmount(ctx context.Context) (decimal.Decimal, error)
}
