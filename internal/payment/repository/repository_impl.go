package repository

import (
	"context"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertTransaction(ctx context.Context, db *gorm.DB, txn *domain.Transaction) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`INSERT INTO transactions (
			id, org_id, provider, provider_event_id, event_type, amount,
			currency, status, payload, received_at, order_id, subscription_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (provider, provider_event_id) DO NOTHING`,
		txn.ID,
		txn.OrgID,
		txn.Provider,
		txn.ProviderEventID,
		txn.EventType,
		txn.Amount,
		txn.Currency,
		txn.Status,
		txn.Payload,
		txn.ReceivedAt,
		txn.OrderID,
		txn.SubscriptionID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) FindTransaction(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*domain.Transaction, error) {
	var item domain.Transaction
	err := db.WithContext(ctx).Raw(
		`SELECT id, org_id, provider, provider_event_id, event_type, amount,
			currency, status, payload, received_at, order_id, subscription_id
		 FROM transactions
		 WHERE provider = ? AND provider_event_id = ?
		 LIMIT 1`,
		provider,
		providerEventID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) AttachOrder(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET order_id = ?
		 WHERE id = ? AND order_id IS NULL`,
		orderID,
		id,
	).Error
}

func (r *repo) AttachSubscription(ctx context.Context, db *gorm.DB, id, subscriptionID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE transactions
		 SET subscription_id = ?
		 WHERE id = ? AND subscription_id IS NULL`,
		subscriptionID,
		id,
	).Error
}
