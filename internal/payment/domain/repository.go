package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertTransaction appends the ledger row, relying on the
	// (provider, provider_event_id) unique index for idempotency. It returns
	// false when the row already existed, in which case callers must skip all
	// downstream mutation.
	InsertTransaction(ctx context.Context, db *gorm.DB, txn *Transaction) (bool, error)
	FindTransaction(ctx context.Context, db *gorm.DB, provider, providerEventID string) (*Transaction, error)
	AttachOrder(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID) error
	AttachSubscription(ctx context.Context, db *gorm.DB, id, subscriptionID snowflake.ID) error
}
