package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, link *domain.PaymentLink) error {
	return db.WithContext(ctx).Create(link).Error
}

// FindByID looks a link up by id alone: webhooks resolve the tenant from the
// link itself, the org is not known until the row is loaded.
func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentLink, error) {
	return r.find(ctx, db, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.PaymentLink, error) {
	return r.find(ctx, db, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, id snowflake.ID, lock bool) (*domain.PaymentLink, error) {
	tx := db.WithContext(ctx)
	// sqlite has a single writer; FOR UPDATE is not valid syntax there.
	if lock && db.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.PaymentLink
	err := tx.Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_links
		 SET status = ?, updated_at = ?
		 WHERE id = ?`,
		status,
		time.Now().UTC(),
		id,
	).Error
}

func (r *repo) AttachOrder(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payment_links
		 SET order_id = ?, updated_at = ?
		 WHERE id = ? AND order_id IS NULL`,
		orderID,
		time.Now().UTC(),
		id,
	).Error
}
