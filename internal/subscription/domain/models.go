package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Interval string

const (
	IntervalWeekly  Interval = "weekly"
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Plan is a recurring price a tenant sells. The webhook reference encodes
// the plan id, so plans are the entry point for subscription correlation.
type Plan struct {
	ID        snowflake.ID    `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID    `json:"org_id" gorm:"not null;index"`
	Code      string          `json:"code" gorm:"type:text;not null"`
	Name      string          `json:"name" gorm:"type:text;not null"`
	Interval  Interval        `json:"interval" gorm:"type:text;not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(15,2);not null"`
	Currency  string          `json:"currency" gorm:"type:text;not null"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (Plan) TableName() string { return "plans" }

type Status string

const (
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// Subscription is created lazily on the first successful recurring payment.
// The provider supplies no stable subscription id, so the payer email and the
// last provider payment id are kept for correlation of later notifications.
type Subscription struct {
	ID                 snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID              snowflake.ID `json:"org_id" gorm:"not null;index"`
	PlanID             snowflake.ID `json:"plan_id" gorm:"not null;index"`
	Status             Status       `json:"status" gorm:"type:text;not null"`
	CurrentPeriodStart time.Time    `json:"current_period_start" gorm:"not null"`
	CurrentPeriodEnd   time.Time    `json:"current_period_end" gorm:"not null"`
	PayerEmail         string       `json:"payer_email" gorm:"type:text"`
	ProviderPaymentID  *string      `json:"provider_payment_id" gorm:"type:text"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

func (Subscription) TableName() string { return "subscriptions" }

// SubscriptionInvoice records one payment against a subscription period.
// Amounts are stored in integer minor units.
type SubscriptionInvoice struct {
	ID                snowflake.ID `json:"id" gorm:"primaryKey"`
	OrgID             snowflake.ID `json:"org_id" gorm:"not null;index"`
	SubscriptionID    snowflake.ID `json:"subscription_id" gorm:"not null;index"`
	ProviderPaymentID string       `json:"provider_payment_id" gorm:"type:text;not null"`
	AmountCents       int64        `json:"amount_cents" gorm:"not null"`
	Currency          string       `json:"currency" gorm:"type:text;not null"`
	PaidAt            time.Time    `json:"paid_at" gorm:"not null"`
	CreatedAt         time.Time    `json:"created_at"`
}

func (SubscriptionInvoice) TableName() string { return "subscription_invoices" }

// Next returns the period end anchored at the given start. Unknown intervals
// fall back to monthly.
func (i Interval) Next(start time.Time) time.Time {
	switch i {
	case IntervalWeekly:
		return start.AddDate(0, 0, 7)
	case IntervalYearly:
		return start.AddDate(1, 0, 0)
	case IntervalMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 1, 0)
	}
}
