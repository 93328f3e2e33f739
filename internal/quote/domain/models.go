// Package domain contains persistence models and contracts for quotes.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents lifecycle states for a quote.
type QuoteStatus string

const (
	QuoteStatusDraft    QuoteStatus = "draft"
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
)

// Terminal reports whether the status admits no further transitions.
func (s QuoteStatus) Terminal() bool {
	return s == QuoteStatusAccepted || s == QuoteStatusRejected
}

type QuoteType string

const (
	QuoteTypePrimary   QuoteType = "primary"
	QuoteTypeFollowUp  QuoteType = "follow_up"
	QuoteTypeAmendment QuoteType = "amendment"
)

// Quote captures a priced offer against a deal. Monetary columns are
// fixed-point decimals; totals are always recomputed from the items.
type Quote struct {
	ID           snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID        snowflake.ID    `json:"org_id" gorm:"not null;index"`
	DealID       snowflake.ID    `json:"deal_id" gorm:"not null;index"`
	Number       string          `json:"number" gorm:"type:text;not null"`
	Status       QuoteStatus     `json:"status" gorm:"type:text;not null"`
	QuoteType    QuoteType       `json:"quote_type" gorm:"type:text;not null"`
	IsPrimary    bool            `json:"is_primary" gorm:"not null;default:false"`
	Currency     string          `json:"currency" gorm:"type:text;not null"`
	Subtotal     decimal.Decimal `json:"subtotal" gorm:"type:decimal(15,2);not null"`
	Discount     decimal.Decimal `json:"discount" gorm:"type:decimal(15,2);not null"`
	Tax          decimal.Decimal `json:"tax" gorm:"type:decimal(15,2);not null"`
	Total        decimal.Decimal `json:"total" gorm:"type:decimal(15,2);not null"`
	ValidUntil   *time.Time      `json:"valid_until"`
	DocumentPath *string         `json:"document_path,omitempty" gorm:"type:text"`
	CreatedAt    time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time       `json:"updated_at" gorm:"not null"`

	Items []QuoteItem `json:"items" gorm:"foreignKey:QuoteID"`
}

func (Quote) TableName() string { return "quotes" }

// CanBeModified reports whether items or totals may still change.
func (q *Quote) CanBeModified() bool {
	return !q.Status.Terminal()
}

// QuoteItem belongs to exactly one quote. Total is derived and recomputed
// whenever the item set changes; never independently authoritative.
type QuoteItem struct {
	ID          snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID       snowflake.ID    `json:"org_id" gorm:"not null;index"`
	QuoteID     snowflake.ID    `json:"quote_id" gorm:"not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(15,2);not null"`
	UnitPrice   decimal.Decimal `json:"unit_price" gorm:"type:decimal(15,2);not null"`
	DiscountPct decimal.Decimal `json:"discount_pct" gorm:"type:decimal(5,2);not null"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct" gorm:"type:decimal(5,2);not null"`
	Total       decimal.Decimal `json:"total" gorm:"type:decimal(15,2);not null"`
	SortOrder   int             `json:"sort_order" gorm:"not null;default:0"`
	CreatedAt   time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time       `json:"updated_at" gorm:"not null"`
}

func (QuoteItem) TableName() string { return "quote_items" }
