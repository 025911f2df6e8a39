package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/layer-3/faucet/ports"
)

// ClaimEvent represents a successful faucet claim
type ClaimEvent struct {
	Address string `json:"address"`
	TxRef   string `json:"tx_ref"`
	Amount  string `json:"amount"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	topic     string
}

// NewWatermillPublisher creates a new Watermill publisher
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{
		publisher: publisher,
		topic:     "faucet.claim",
	}
}

// PublishClaim publishes a claim event
func (p *WatermillPublisher) PublishClaim(ctx context.Context, address, txRef string, amount decimal.Decimal) error {
	event := ClaimEvent{
		Address: address,
		TxRef:   txRef,
		Amount:  amount.String(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
