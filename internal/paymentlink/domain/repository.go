package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, link *PaymentLink) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentLink, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentLink, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status) error
	AttachOrder(ctx context.Context, db *gorm.DB, id, orderID snowflake.ID) error
}
