package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertPlan(ctx context.Context, db *gorm.DB, plan *domain.Plan) error {
	return db.WithContext(ctx).Create(plan).Error
}

func (r *repo) FindPlanByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Plan, error) {
	var item domain.Plan
	err := db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) InsertSubscription(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) FindByProviderPaymentID(ctx context.Context, db *gorm.DB, orgID, planID snowflake.ID, providerPaymentID string) (*domain.Subscription, error) {
	if providerPaymentID == "" {
		return nil, nil
	}
	var item domain.Subscription
	err := db.WithContext(ctx).
		Where("org_id = ? AND plan_id = ? AND provider_payment_id = ?", orgID, planID, providerPaymentID).
		Order("id").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByPayerEmail(ctx context.Context, db *gorm.DB, orgID, planID snowflake.ID, email string) (*domain.Subscription, error) {
	if email == "" {
		return nil, nil
	}
	var item domain.Subscription
	err := db.WithContext(ctx).
		Where("org_id = ? AND plan_id = ? AND payer_email = ?", orgID, planID, email).
		Order("id").
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) UpdatePeriod(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET status = ?, current_period_start = ?, current_period_end = ?,
		     payer_email = ?, provider_payment_id = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		sub.Status,
		sub.CurrentPeriodStart,
		sub.CurrentPeriodEnd,
		sub.PayerEmail,
		sub.ProviderPaymentID,
		time.Now().UTC(),
		sub.OrgID,
		sub.ID,
	).Error
}

func (r *repo) MarkPastDue(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE subscriptions
		 SET status = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		domain.StatusPastDue,
		time.Now().UTC(),
		orgID,
		id,
	).Error
}

func (r *repo) InsertInvoice(ctx context.Context, db *gorm.DB, invoice *domain.SubscriptionInvoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) ListInvoices(ctx context.Context, db *gorm.DB, orgID, subscriptionID snowflake.ID) ([]domain.SubscriptionInvoice, error) {
	var items []domain.SubscriptionInvoice
	err := db.WithContext(ctx).
		Where("org_id = ? AND subscription_id = ?", orgID, subscriptionID).
		Order("paid_at").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
