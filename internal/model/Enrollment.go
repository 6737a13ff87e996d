package model

import "time"

type Enrollment struct {
	BaseModel
	StudentID string  `gorm:"type:text;not null;index" json:"studentId" form:"studentId" binding:"required"`
	CourseID  *string `gorm:"type:text;index" json:"courseId" form:"courseId"`
	ClassID   *string `gorm:"type:text;index" json:"classId" form:"classId"`

	CompletedAt *time.Time `gorm:"type:timestamptz" json:"completedAt"`

	Student Student `gorm:"constraint:OnDelete:CASCADE" json:"student,omitempty"`
	Course  *Course `gorm:"constraint:OnDelete:SET NULL" json:"course,omitempty"`
	Class   *Class  `gorm:"constraint:OnDelete:SET NULL" json:"class,omitempty"`
}

func (e Enrollment) TableName() string {
	return "enrollments"
}
