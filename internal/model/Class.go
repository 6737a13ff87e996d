package model

type Class struct {
	BaseModel
	Name     string  `gorm:"type:varchar(100);not null" json:"name" form:"name" binding:"required,strNotEmpty"`
	CourseID *string `gorm:"type:text;index" json:"courseId" form:"courseId"`

	Course *Course `gorm:"constraint:OnDelete:SET NULL" json:"course,omitempty"`
}

func (c Class) TableName() string {
	return "classes"
}
