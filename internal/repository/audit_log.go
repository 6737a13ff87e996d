package repository

import (
	"context"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepository struct {
	*baseRepository
}

func (alr AuditLogRepository) Append(ctx context.Context, tx *gorm.DB, entry *model.AuditLog) error {
	alr.logger.Debugf("Append audit log: %s %s %s", entry.Entity, entry.Action, entry.EntityID)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.AuditLog{}).Create(entry).Error
}

func (alr AuditLogRepository) ListByEntity(ctx context.Context, tx *gorm.DB, entity constant.AuditEntity, entityId string) ([]*model.AuditLog, error) {
	alr.logger.Debugf("List audit logs for %s: %s", entity, entityId)

	db := alr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var logs []*model.AuditLog
	if err := db.WithContext(ctx).Model(&model.AuditLog{}).Where(map[string]any{
		"entity":    entity,
		"entity_id": entityId,
	}).Order("timestamp asc").Find(&logs).Error; err != nil {
		return logs, err
	}

	return logs, nil
}
