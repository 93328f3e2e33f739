package repository

import (
	"context"
	"errors"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cfg *domain.ProviderConfig) error {
	return db.WithContext(ctx).Create(cfg).Error
}

func (r *repo) FindActive(ctx context.Context, db *gorm.DB, orgID snowflake.ID, provider string) (*domain.ProviderConfig, error) {
	var item domain.ProviderConfig
	err := db.WithContext(ctx).
		Where("org_id = ? AND provider = ? AND is_active = ?", orgID, provider, true).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}
