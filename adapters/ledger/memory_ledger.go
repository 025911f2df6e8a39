package ledger

import (
	"context"
	"crypto/rand"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

type claimRecord struct {
	txRef  string
	amount decimal.Decimal
}

// MemoryLedger simulates the faucet contract in memory. All state changes
// happen under one mutex, so the claimed flag transitions false to true
// exactly once per address even under concurrent claims.
type MemoryLedger struct {
	mu     sync.Mutex
	pool   decimal.Decimal // remaining faucet pool
	amount decimal.Decimal // allocation per claim
	claims map[string]claimRecord
}

// NewMemoryLedger creates a simulated ledger with the given pool balance
// and per-claim allocation.
func NewMemoryLedger(pool, amount decimal.Decimal) *MemoryLedger {
	return &MemoryLedger{
		pool:   pool,
		amount: amount,
		claims: make(map[string]claimRecord),
	}
}

// HasClaimed reports whether the address has already claimed
func (l *MemoryLedger) HasClaimed(ctx context.Context, address string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, claimed := l.claims[address]
	return claimed, nil
}

// Claim allocates the faucet amount to the address. Check and set are one
// critical section; a second claim for the same address fails.
func (l *MemoryLedger) Claim(ctx context.Context, address string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, claimed := l.claims[address]; claimed {
		return "", core.ErrAlreadyClaimed
	}
	if l.pool.Cmp(l.amount) < 0 {
		return "", core.ErrFaucetExhausted
	}

	txRef, err := pseudoTxHash()
	if err != nil {
		return "", err
	}

	l.pool = l.pool.Sub(l.amount)
	l.claims[address] = claimRecord{txRef: txRef, amount: l.amount}
	return txRef, nil
}

// BalanceOf returns the simulated token balance of the address
func (l *MemoryLedger) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, claimed := l.claims[address]
	if !claimed {
		return decimal.Zero, nil
	}
	return rec.amount, nil
}

// ClaimedCount returns the number of addresses that have claimed
func (l *MemoryLedger) ClaimedCount(ctx context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return int64(len(l.claims)), nil
}

// FaucetAmount returns the allocation dispensed per claim
func (l *MemoryLedger) FaucetAmount(ctx context.Context) (decimal.Decimal, error) {
	return l.amount, nil
}

// pseudoTxHash fabricates a transaction-hash-shaped reference for the
// simulated backend.
func pseudoTxHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hexutil.Encode(buf), nil
}

var _ ports.Ledger = (*MemoryLedger)(nil)
