package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service resolves subscriptions for inbound recurring payments and rolls
// their billing periods forward. All methods run inside the caller's
// transaction.
type Service interface {
	FindPlan(ctx context.Context, tx *gorm.DB, planID snowflake.ID) (*Plan, error)
	// ApplyPayment finds or creates the subscription for a successful
	// payment, advances its period anchored at paidAt, and issues exactly
	// one invoice.
	ApplyPayment(ctx context.Context, tx *gorm.DB, req PaymentApplication) (*Subscription, error)
	// MarkPaymentFailed flags the matching subscription past_due. It returns
	// nil without error when no subscription can be correlated; a failed
	// first payment has nothing to mark.
	MarkPaymentFailed(ctx context.Context, tx *gorm.DB, plan *Plan, payerEmail, providerPaymentID string) (*Subscription, error)
}

// PaymentApplication is one successful recurring payment to apply.
type PaymentApplication struct {
	Plan              *Plan
	PayerEmail        string
	ProviderPaymentID string
	Amount            decimal.Decimal
	Currency          string
	PaidAt            time.Time
}
