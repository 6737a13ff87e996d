package model

type CertificateAssignment struct {
	BaseModel
	CertificateTemplateID string `gorm:"type:text;not null;index" json:"certificateTemplateId" form:"certificateTemplateId" binding:"required"`

	// Exactly one of CourseID / ClassID is set, an assignment targets either
	// a course or a class.
	CourseID *string `gorm:"type:text;index" json:"courseId" form:"courseId"`
	ClassID  *string `gorm:"type:text;index" json:"classId" form:"classId"`

	// At most one default assignment per target at any time, enforced
	// transactionally by SetDefault.
	IsDefault bool `gorm:"type:boolean;not null;default:false" json:"isDefault" form:"isDefault"`

	CertificateTemplate CertificateTemplate `gorm:"constraint:OnDelete:CASCADE" json:"certificateTemplate,omitempty"`
	Course              *Course             `gorm:"constraint:OnDelete:CASCADE" json:"course,omitempty"`
	Class               *Class              `gorm:"constraint:OnDelete:CASCADE" json:"class,omitempty"`
}

func (ca CertificateAssignment) TableName() string {
	return "certificate_assignments"
}
