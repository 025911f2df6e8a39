package core

import "github.com/shopspring/decimal"

// FaucetStatus is a snapshot of the faucet as seen by one address
type FaucetStatus struct {
	HasClaimed   bool
	Balance      decimal.Decimal // token balance of the address
	Users        int64           // number of addresses that have claimed
	FaucetAmount decimal.Decimal // tokens dispensed per claim
}

// ClaimReceipt is the result of a successful claim
type ClaimReceipt struct {
	TxRef  string // transaction reference for client display
	Amount decimal.Decimal
}
