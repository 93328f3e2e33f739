package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, deal *domain.Deal) error {
	return db.WithContext(ctx).Create(deal).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Deal, error) {
	var item domain.Deal
	err := db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*domain.Deal, error) {
	tx := db.WithContext(ctx)
	// sqlite has a single writer; FOR UPDATE is not valid syntax there.
	if db.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var item domain.Deal
	err := tx.Where("org_id = ? AND id = ?", orgID, id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *repo) MarkWon(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, closedDate time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE deals
		 SET status = ?, closed_date = ?, updated_at = ?
		 WHERE org_id = ? AND id = ? AND status <> ?`,
		domain.DealStatusWon,
		closedDate,
		closedDate,
		orgID,
		id,
		domain.DealStatusWon,
	).Error
}
