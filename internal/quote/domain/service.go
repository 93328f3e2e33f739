package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type QuoteItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	TaxRatePct  decimal.Decimal `json:"tax_rate_pct"`
}

type CreateQuoteRequest struct {
	OrgID    snowflake.ID
	DealID   snowflake.ID     `json:"deal_id,string"`
	Currency string           `json:"currency"`
	Items    []QuoteItemInput `json:"items"`
}

type UpdateQuoteRequest struct {
	OrgID    snowflake.ID
	QuoteID  snowflake.ID
	Currency string           `json:"currency"`
	Items    []QuoteItemInput `json:"items"`
}

type Service interface {
	Create(ctx context.Context, req CreateQuoteRequest) (*Quote, error)
	Get(ctx context.Context, orgID, id snowflake.ID) (*Quote, error)
	Update(ctx context.Context, req UpdateQuoteRequest) (*Quote, error)
	Send(ctx context.Context, orgID, id snowflake.ID) (*Quote, error)
	Accept(ctx context.Context, orgID, id snowflake.ID) (*Quote, error)
	Reject(ctx context.Context, orgID, id snowflake.ID) (*Quote, error)

	// AcceptWithTx runs the acceptance state machine inside a caller-owned
	// transaction. The reconciliation orchestrator uses it so quote, deal and
	// transaction writes share one isolation boundary.
	AcceptWithTx(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
}
