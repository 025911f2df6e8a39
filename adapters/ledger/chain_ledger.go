package ledger

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"

	"github.com/layer-3/faucet/core"
	"github.com/layer-3/faucet/ports"
)

const faucetABI = `[
	{"name":"hasClaimed","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"bool"}]},
	{"name":"claimedCount","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"faucetAmount","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"name":"claimTokens","type":"function","stateMutability":"nonpayable","inputs":[{"name":"recipient","type":"address"}],"outputs":[]}
]`

const erc20ABI = `[
	{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
]`

// ChainConfig holds the settings for the chain-backed ledger.
type ChainConfig struct {
	RPCURL        string
	FaucetAddress string
	TokenAddress  string
	OwnerKey      string // hex-encoded private key of the faucet owner
	ChainID       int64
	TokenDecimals int32
}

// ChainLedger implements the Ledger interface against the faucet contract
// on a live chain. The contract's own state transition is the atomicity
// guarantee for the claim; a reverted duplicate claim maps to
// core.ErrAlreadyClaimed.
type ChainLedger struct {
	faucet   *bind.BoundContract
	token    *bind.BoundContract
	opts     *bind.TransactOpts
	decimals int32
}

// NewChainLedger dials the RPC endpoint and binds the faucet and token
// contracts.
func NewChainLedger(ctx context.Context, cfg ChainConfig) (*ChainLedger, error) {
	client, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial rpc endpoint: %w", err)
	}

	faucetParsed, err := abi.JSON(strings.NewReader(faucetABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse faucet abi: %w", err)
	}
	tokenParsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.OwnerKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse owner key: %w", err)
	}

	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.ChainID))
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}

	decimals := cfg.TokenDecimals
	if decimals == 0 {
		decimals = 18
	}

	return &ChainLedger{
		faucet:   bind.NewBoundContract(common.HexToAddress(cfg.FaucetAddress), faucetParsed, client, client, client),
		token:    bind.NewBoundContract(common.HexToAddress(cfg.TokenAddress), tokenParsed, client, client, client),
		opts:     opts,
		decimals: decimals,
	}, nil
}

// HasClaimed reports whether the address has already claimed
func (l *ChainLedger) HasClaimed(ctx context.Context, address string) (bool, error) {
	var out []interface{}
	err := l.faucet.Call(&bind.CallOpts{Context: ctx}, &out, "hasClaimed", common.HexToAddress(address))
	if err != nil {
		return false, fmt.Errorf("hasClaimed call failed: %w", err)
	}
	return out[0].(bool), nil
}

// Claim sends the claim transaction and returns its hash
func (l *ChainLedger) Claim(ctx context.Context, address string) (string, error) {
	opts := *l.opts
	opts.Context = ctx

	tx, err := l.faucet.Transact(&opts, "claimTokens", common.HexToAddress(address))
	if err != nil {
		return "", mapClaimError(err)
	}
	return tx.Hash().Hex(), nil
}

// BalanceOf returns the token balance of the address in whole tokens
func (l *ChainLedger) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	var out []interface{}
	err := l.token.Call(&bind.CallOpts{Context: ctx}, &out, "balanceOf", common.HexToAddress(address))
	if err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf call failed: %w", err)
	}
	return decimal.NewFromBigInt(out[0].(*big.Int), -l.decimals), nil
}

// ClaimedCount returns the number of addresses that have claimed
func (l *ChainLedger) ClaimedCount(ctx context.Context) (int64, error) {
	var out []interface{}
	err := l.faucet.Call(&bind.CallOpts{Context: ctx}, &out, "claimedCount")
	if err != nil {
		return 0, fmt.Errorf("claimedCount call failed: %w", err)
	}
	return out[0].(*big.Int).Int64(), nil
}

// FaucetAmount returns the allocation per claim in whole tokens
func (l *ChainLedger) FaucetAmount(ctx context.Context) (decimal.Decimal, error) {
	var out []interface{}
	err := l.faucet.Call(&bind.CallOpts{Context: ctx}, &out, "faucetAmount")
	if err != nil {
		return decimal.Zero, fmt.Errorf("faucetAmount call failed: %w", err)
	}
	return decimal.NewFromBigInt(out[0].(*big.Int), -l.decimals), nil
}

// mapClaimError translates contract revert reasons into the ledger's
// sentinel errors. The contract enforces the once-per-address transition,
// so a duplicate revert is an AlreadyClaimed outcome, not an internal error.
func mapClaimError(err error) error {
	reason := strings.ToLower(err.Error())
	switch {
	case strings.Contains(reason, "already claimed"):
		return core.ErrAlreadyClaimed
	case strings.Contains(reason, "insufficient") || strings.Contains(reason, "faucet empty"):
		return core.ErrFaucetExhausted
	default:
		return fmt.Errorf("%w: %v", core.ErrClaimFailed, err)
	}
}

var _ ports.Ledger = (*ChainLedger)(nil)
