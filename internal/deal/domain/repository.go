package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, deal *Deal) error
	FindByID(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Deal, error)
	// FindByIDForUpdate locks the deal row for the duration of the enclosing
	// transaction so concurrent quote acceptances serialize.
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID) (*Deal, error)
	MarkWon(ctx context.Context, db *gorm.DB, orgID, id snowflake.ID, closedDate time.Time) error
}
