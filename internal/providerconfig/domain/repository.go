package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cfg *ProviderConfig) error
	// FindActive returns the tenant's active config for a provider, nil when
	// the tenant has none.
	FindActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID, provider string) (*ProviderConfig, error)
}
