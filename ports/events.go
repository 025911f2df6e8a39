package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// EventPublisher publishes events to notify other instances
type EventPublisher interface {
	PublishClaim(ctx context.Context, address, txRef string, amount decimal.Decimal) error
}
