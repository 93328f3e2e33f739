package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	EventTypePaymentSucceeded = "payment_succeeded"
	EventTypePaymentFailed    = "payment_failed"
)

type TransactionStatus string

const (
	TransactionStatusSucceeded TransactionStatus = "succeeded"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is the append-only ledger row for one provider notification.
// (provider, provider_event_id) is unique at the storage layer; the financial
// fact is never mutated after insert, only the order/subscription foreign
// keys are attached once the correlated aggregate exists.
type Transaction struct {
	ID              snowflake.ID      `json:"id" gorm:"primaryKey"`
	OrgID           snowflake.ID      `json:"org_id" gorm:"not null;index"`
	Provider        string            `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string            `json:"provider_event_id" gorm:"type:text;not null"`
	EventType       string            `json:"event_type" gorm:"type:text;not null"`
	Amount          decimal.Decimal   `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency        string            `json:"currency" gorm:"type:text;not null"`
	Status          TransactionStatus `json:"status" gorm:"type:text;not null"`
	Payload         datatypes.JSON    `json:"payload" gorm:"type:jsonb;not null"`
	ReceivedAt      time.Time         `json:"received_at" gorm:"not null"`
	OrderID         *snowflake.ID     `json:"order_id" gorm:"index"`
	SubscriptionID  *snowflake.ID     `json:"subscription_id" gorm:"index"`
}

func (Transaction) TableName() string { return "transactions" }

// Event is the canonical payment event parsed by adapters. RawPayload is a
// JSON rendering of the provider payload suitable for the ledger's payload
// column regardless of the provider's wire encoding.
type Event struct {
	Provider        string
	ProviderEventID string
	Reference       string
	Amount          decimal.Decimal
	Currency        string
	StatusRaw       string
	Status          TransactionStatus
	PayerEmail      string
	RawPayload      []byte
}
