package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	return r.find(ctx, db, orgID, id, false)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	return r.find(ctx, db, orgID, id, true)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, lock bool) (*domain.Quote, error) {
	tx := db.WithContext(ctx)
	if lock && db.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.Quote
	err := tx.Where("org_id = ? AND id = ?", orgID, id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	if err := db.WithContext(ctx).
		Where("org_id = ? AND quote_id = ?", orgID, id).
		Order("sort_order ASC").
		Find(&item.Items).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, quote *domain.Quote, items []domain.QuoteItem) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM quote_items WHERE org_id = ? AND quote_id = ?`,
		quote.OrgID,
		quote.ID,
	).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&items).Error
}

func (r *repo) UpdateTotals(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET currency = ?, subtotal = ?, discount = ?, tax = ?, total = ?, document_path = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		quote.Currency,
		quote.Subtotal,
		quote.Discount,
		quote.Tax,
		quote.Total,
		quote.DocumentPath,
		time.Now().UTC(),
		quote.OrgID,
		quote.ID,
	).Error
}

func (r *repo) SetDocumentPath(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, path string) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET document_path = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		path,
		time.Now().UTC(),
		orgID,
		id,
	).Error
}

func (r *repo) SetStatus(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Exec(
		`UPDATE quotes
		 SET status = ?, quote_type = ?, is_primary = ?, updated_at = ?
		 WHERE org_id = ? AND id = ?`,
		quote.Status,
		quote.QuoteType,
		quote.IsPrimary,
		time.Now().UTC(),
		quote.OrgID,
		quote.ID,
	).Error
}

func (r *repo) CountAcceptedByDeal(ctx context.Context, db *gorm.DB, orgID, dealID snowflake.ID) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(1)
		 FROM quotes
		 WHERE org_id = ? AND deal_id = ? AND status = ?`,
		orgID,
		dealID,
		domain.QuoteStatusAccepted,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
