package model

type Student struct {
	BaseModel
	FullName string `gorm:"type:varchar(100);not null" json:"fullName" form:"fullName" binding:"required,strNotEmpty"`
	Email    string `gorm:"type:citext;not null;uniqueIndex" json:"email" form:"email" binding:"required,email"`
}

func (s Student) TableName() string {
	return "students"
}
