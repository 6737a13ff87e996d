package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BaseModel struct {
	ID        string     `gorm:"type:text;primaryKey" json:"id"`
	CreatedAt *time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;not null" json:"createdAt"`
	UpdatedAt *time.Time `gorm:"type:timestamptz;default:CURRENT_TIMESTAMP;onUpdate:CURRENT_TIMESTAMP;not null" json:"updatedAt"`
}

// BeforeCreate assigns a uuid v4 id. Certificate numbers are separate, they
// come from the yearly sequence, never from this id.
func (bm *BaseModel) BeforeCreate(tx *gorm.DB) (err error) {
	bm.ID = uuid.NewString()
	return
}
