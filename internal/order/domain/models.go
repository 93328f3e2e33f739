package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPaid          Status = "paid"
	StatusPaymentFailed Status = "payment_failed"
)

// Order is the fulfillment record created (or re-synced) when a payment
// outcome arrives for a quote's payment link. One quote has at most one
// order; repeated notifications re-sync the status instead of duplicating.
type Order struct {
	ID       snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID    snowflake.ID    `json:"org_id" gorm:"not null;index"`
	DealID   *snowflake.ID   `json:"deal_id" gorm:"index"`
	QuoteID  *snowflake.ID   `json:"quote_id" gorm:"index"`
	Amount   decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency string          `json:"currency" gorm:"type:text;not null"`
	Status   Status          `json:"status" gorm:"type:text;not null"`
	PlacedAt time.Time       `json:"placed_at" gorm:"not null"`
}

func (Order) TableName() string { return "orders" }

var ErrNotFound = errors.New("order_not_found")
