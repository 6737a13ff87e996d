package model

type Course struct {
	BaseModel
	Name string `gorm:"type:varchar(100);not null" json:"name" form:"name" binding:"required,strNotEmpty"`
}

func (c Course) TableName() string {
	return "courses"
}
