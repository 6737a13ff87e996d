package model

import (
	"time"

	"github.com/openlearn/certforge/internal/constant"
)

type AuditLog struct {
	BaseModel
	Entity      constant.AuditEntity `gorm:"type:varchar(50);not null;index" json:"entity"`
	EntityID    string               `gorm:"type:text;not null;index" json:"entityId"`
	Action      constant.AuditAction `gorm:"type:varchar(30);not null" json:"action"`
	Actor       string               `gorm:"type:text;not null" json:"actor"`
	Description string               `gorm:"type:text" json:"description"`
	Timestamp   time.Time            `gorm:"type:timestamptz;not null" json:"timestamp"`
}

func (al AuditLog) TableName() string {
	return "audit_logs"
}
