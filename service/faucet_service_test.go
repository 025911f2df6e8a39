package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/faucet/adapters/ledger"
	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/internal/logging"
)

type capturingPublisher struct {
	mu     sync.Mutex
	claims []string
	err    error
}

func (p *capturingPublisher) PublishClaim(ctx context.Context, address, txRef string, amount decimal.Decimal) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.claims = append(p.claims, address)
	return nil
}

type failingLedger struct {
	*ledger.MemoryLedger
	claimErr error
}

func (l *failingLedger) Claim(ctx context.Context, address string) (string, error) {
	return "", l.claimErr
}

func newTestLedger() *ledger.MemoryLedger {
	return ledger.NewMemoryLedger(decimal.NewFromInt(1000), decimal.NewFromInt(100))
}

func TestClaim_SequentialIdempotence(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{}
	svc := NewFaucetService(newTestLedger(), pub, logging.Discard())
	ctx := context.Background()

	receipt, err := svc.Claim(ctx, "0xabc")
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TxRef)
	require.True(t, receipt.Amount.Equal(decimal.NewFromInt(100)))

	_, err = svc.Claim(ctx, "0xabc")
	require.ErrorIs(t, err, core.ErrAlreadyClaimed)

	require.Equal(t, []string{"0xabc"}, pub.claims)
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	t.Parallel()

	svc := NewFaucetService(newTestLedger(), nil, logging.Discard())
	ctx := context.Background()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Claim(ctx, "0xabc")
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			if !errors.Is(err, core.ErrAlreadyClaimed) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
}

func TestClaim_Exhausted(t *testing.T) {
	t.Parallel()

	l := ledger.NewMemoryLedger(decimal.NewFromInt(150), decimal.NewFromInt(100))
	svc := NewFaucetService(l, nil, logging.Discard())
	ctx := context.Background()

	_, err := svc.Claim(ctx, "0xaaa")
	require.NoError(t, err)

	_, err = svc.Claim(ctx, "0xbbb")
	require.ErrorIs(t, err, core.ErrFaucetExhausted)
}

func TestClaim_LedgerFailureMapsToClaimFailed(t *testing.T) {
	t.Parallel()

	l := &failingLedger{MemoryLedger: newTestLedger(), claimErr: errors.New("rpc timeout")}
	svc := NewFaucetService(l, nil, logging.Discard())

	_, err := svc.Claim(context.Background(), "0xabc")
	require.ErrorIs(t, err, core.ErrClaimFailed)
}

func TestClaim_PublishFailureDoesNotFailClaim(t *testing.T) {
	t.Parallel()

	pub := &capturingPublisher{err: errors.New("broker down")}
	svc := NewFaucetService(newTestLedger(), pub, logging.Discard())

	receipt, err := svc.Claim(context.Background(), "0xabc")
	require.NoError(t, err)
	require.NotEmpty(t, receipt.TxRef)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	svc := NewFaucetService(newTestLedger(), nil, logging.Discard())
	ctx := context.Background()

	status, err := svc.Status(ctx, "0xabc")
	require.NoError(t, err)
	require.False(t, status.HasClaimed)
	require.True(t, status.Balance.IsZero())
	require.Equal(t, int64(0), status.Users)
	require.True(t, status.FaucetAmount.Equal(decimal.NewFromInt(100)))

	_, err = svc.Claim(ctx, "0xabc")
	require.NoError(t, err)

	status, err = svc.Status(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, status.HasClaimed)
	require.True(t, status.Balance.Equal(decimal.NewFromInt(100)))
	require.Equal(t, int64(1), status.Users)
}
