package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/audit/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
}

func NewService(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
	}
}

func (s *Service) AuditLog(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, action string, targetType string, targetID *string, metadata map[string]any) error {
	if tx == nil {
		tx = s.db
	}
	if metadata == nil {
		metadata = map[string]any{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		s.log.Warn("audit metadata not serializable", zap.String("action", action), zap.Error(err))
		encoded = []byte("{}")
	}

	record := domain.AuditLog{
		ID:         s.genID.Generate(),
		OrgID:      orgID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   datatypes.JSON(encoded),
		CreatedAt:  time.Now().UTC(),
	}

	if err := tx.WithContext(ctx).Create(&record).Error; err != nil {
		// Audit must never fail the business write it describes.
		s.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
	return nil
}
