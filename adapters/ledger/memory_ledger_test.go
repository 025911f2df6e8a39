package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/layer-3/faucet/core"
)

func TestMemoryLedger_ClaimOnce(t *testing.T) {
	t.Parallel()

	l := NewMemoryLedger(decimal.NewFromInt(1000), decimal.NewFromInt(100))
	ctx := context.Background()

	claimed, err := l.HasClaimed(ctx, "0xabc")
	require.NoError(t, err)
	require.False(t, claimed)

	txRef, err := l.Claim(ctx, "0xabc")
	require.NoError(t, err)
	require.Regexp(t, `^0x[0-9a-f]{64}$`, txRef)

	claimed, err = l.HasClaimed(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = l.Claim(ctx, "0xabc")
	require.ErrorIs(t, err, core.ErrAlreadyClaimed)
}

func TestMemoryLedger_ConcurrentClaimsSingleWinner(t *testing.T) {
	t.Parallel()

	l := NewMemoryLedger(decimal.NewFromInt(1000), decimal.NewFromInt(100))
	ctx := context.Background()

	const attempts = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.Claim(ctx, "0xabc")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case err == core.ErrAlreadyClaimed:
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, attempts-1, rejected)

	count, err := l.ClaimedCount(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestMemoryLedger_Exhaustion(t *testing.T) {
	t.Parallel()

	l := NewMemoryLedger(decimal.NewFromInt(150), decimal.NewFromInt(100))
	ctx := context.Background()

	_, err := l.Claim(ctx, "0xaaa")
	require.NoError(t, err)

	_, err = l.Claim(ctx, "0xbbb")
	require.ErrorIs(t, err, core.ErrFaucetExhausted)
}

func TestMemoryLedger_BalanceAndAmount(t *testing.T) {
	t.Parallel()

	amount := decimal.NewFromInt(100)
	l := NewMemoryLedger(decimal.NewFromInt(1000), amount)
	ctx := context.Background()

	balance, err := l.BalanceOf(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, balance.IsZero())

	_, err = l.Claim(ctx, "0xabc")
	require.NoError(t, err)

	balance, err = l.BalanceOf(ctx, "0xabc")
	require.NoError(t, err)
	require.True(t, balance.Equal(amount))

	got, err := l.FaucetAmount(ctx)
	require.NoError(t, err)
	require.True(t, got.Equal(amount))
}
