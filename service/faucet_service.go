package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

// FaucetService authorizes claims. It keeps no claimed-state of its own:
// the ledger's atomic check-and-set decides every transition, and the
// hasClaimed pre-check only makes duplicate requests fail fast.
type FaucetService struct {
	ledger ports.Ledger
	events ports.EventPublisher
	log    *slog.Logger
}

// NewFaucetService creates a new faucet service. The event publisher may be
// nil when no broker is configured.
func NewFaucetService(ledger ports.Ledger, events ports.EventPublisher, log *slog.Logger) *FaucetService {
	return &FaucetService{
		ledger: ledger,
		events: events,
		log:    log,
	}
}

// Status returns the faucet state as seen by the address
func (s *FaucetService) Status(ctx context.Context, address string) (*core.FaucetStatus, error) {
	claimed, err := s.ledger.HasClaimed(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim status: %w", err)
	}

	balance, err := s.ledger.BalanceOf(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance: %w", err)
	}

	users, err := s.ledger.ClaimedCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim count: %w", err)
	}

	amount, err := s.ledger.FaucetAmount(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read faucet amount: %w", err)
	}

	return &core.FaucetStatus{
		HasClaimed:   claimed,
		Balance:      balance,
		Users:        users,
		FaucetAmount: amount,
	}, nil
}

// Claim transfers the one-time allocation to the address
func (s *FaucetService) Claim(ctx context.Context, address string) (*core.ClaimReceipt, error) {
	claimed, err := s.ledger.HasClaimed(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("%w: checking claim status: %v", core.ErrClaimFailed, err)
	}
	if claimed {
		return nil, core.ErrAlreadyClaimed
	}

	txRef, err := s.ledger.Claim(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrAlreadyClaimed) || errors.Is(err, core.ErrFaucetExhausted) {
			return nil, err
		}
		s.log.Error("ledger claim failed", "address", address, "err", err)
		if errors.Is(err, core.ErrClaimFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrClaimFailed, err)
	}

	amount, err := s.ledger.FaucetAmount(ctx)
	if err != nil {
		s.log.Warn("failed to read faucet amount after claim", "address", address, "err", err)
	}

	if s.events != nil {
		if err := s.events.PublishClaim(ctx, address, txRef, amount); err != nil {
			// The claim already went through; losing the event is not fatal.
			s.log.Warn("failed to publish claim event", "address", address, "err", err)
		}
	}

	s.log.Info("claim succeeded", "address", address, "tx_ref", txRef)
	return &core.ClaimReceipt{TxRef: txRef, Amount: amount}, nil
}
