package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is an append-only record of a decision taken by the core. Every
// skipped write (duplicate event, unresolved correlation) lands here with
// enough context to reconstruct it later.
type AuditLog struct {
	ID         snowflake.ID   `json:"id" gorm:"primaryKey"`
	OrgID      snowflake.ID   `json:"org_id" gorm:"not null;index"`
	Action     string         `json:"action" gorm:"type:text;not null"`
	TargetType string         `json:"target_type" gorm:"type:text;not null"`
	TargetID   *string        `json:"target_id" gorm:"type:text"`
	Metadata   datatypes.JSON `json:"metadata" gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `json:"created_at" gorm:"not null"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// Service records decisions. Callers making the decision inside a database
// transaction pass it so the audit row commits and rolls back with the write
// it describes; callers outside one pass nil.
type Service interface {
	AuditLog(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, action string, targetType string, targetID *string, metadata map[string]any) error
}
