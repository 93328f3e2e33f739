package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentLink is the payable artifact sent to a buyer. Its merchant
// reference on the provider side is the link id itself.
type PaymentLink struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID    `json:"org_id" gorm:"not null;index"`
	QuoteID   *snowflake.ID   `json:"quote_id" gorm:"index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency  string          `json:"currency" gorm:"type:text;not null"`
	Status    Status          `json:"status" gorm:"type:text;not null;default:pending"`
	OrderID   *snowflake.ID   `json:"order_id" gorm:"index"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (PaymentLink) TableName() string { return "payment_links" }

var ErrNotFound = errors.New("payment_link_not_found")
