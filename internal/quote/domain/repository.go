package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Quote, error)
	ReplaceItems(ctx context.Context, db *gorm.DB, quote *Quote, items []QuoteItem) error
	UpdateTotals(ctx context.Context, db *gorm.DB, quote *Quote) error
	SetDocumentPath(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, path string) error
	SetStatus(ctx context.Context, db *gorm.DB, quote *Quote) error
	// CountAcceptedByDeal reports how many quotes on the deal are already
	// accepted. Callers must hold the deal row lock before relying on it.
	CountAcceptedByDeal(ctx context.Context, db *gorm.DB, orgID, dealID snowflake.ID) (int64, error)
}
