package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ProviderConfig holds one tenant's credentials for a payment provider. The
// config column stores the encrypted payload, never plaintext secrets.
type ProviderConfig struct {
	ID        snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID     snowflake.ID   `json:"org_id" gorm:"not null;index"`
	Provider  string         `json:"provider" gorm:"type:text;not null"`
	Config    datatypes.JSON `json:"config" gorm:"type:jsonb;not null"`
	IsActive  bool           `json:"is_active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func (ProviderConfig) TableName() string { return "payment_provider_configs" }

var (
	ErrNotFound             = errors.New("provider_config_not_found")
	ErrInvalidConfig        = errors.New("invalid_provider_config")
	ErrEncryptionKeyMissing = errors.New("provider_config_encryption_key_missing")
)
