package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertPlan(ctx context.Context, db *gorm.DB, plan *Plan) error
	// FindPlanByID resolves a plan by id alone: the plan row carries the
	// tenant, which the webhook path does not yet know.
	FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Plan, error)

	InsertSubscription(ctx context.Context, db *gorm.DB, sub *Subscription) error
	FindByProviderPaymentID(ctx context.Context, db *gorm.DB, orgID, planID snowflake.ID, providerPaymentID string) (*Subscription, error)
	FindByPayerEmail(ctx context.Context, db *gorm.DB, orgID, planID snowflake.ID, email string) (*Subscription, error)
	UpdatePeriod(ctx context.Context, db *gorm.DB, sub *Subscription) error
	MarkPastDue(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error

	InsertInvoice(ctx context.Context, db *gorm.DB, invoice *SubscriptionInvoice) error
	ListInvoices(ctx context.Context, db *gorm.DB, orgID, subscriptionID snowflake.ID) ([]SubscriptionInvoice, error)
}
