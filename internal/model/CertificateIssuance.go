package model

import (
	"encoding/json"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/pkg/certforge"
	"gorm.io/datatypes"
)

type CertificateIssuance struct {
	BaseModel
	CertificateTemplateID string  `gorm:"type:text;not null;index" json:"certificateTemplateId" form:"certificateTemplateId"`
	StudentID             string  `gorm:"type:text;not null;index" json:"studentId" form:"studentId"`
	EnrollmentID          *string `gorm:"type:text;index" json:"enrollmentId" form:"enrollmentId"`

	CertificateNumber string                  `gorm:"type:varchar(30);not null;uniqueIndex" json:"certificateNumber"`
	Status            constant.IssuanceStatus `gorm:"type:varchar(10);not null;default:'issued';index" json:"status"`

	IssuedBy string    `gorm:"type:text;not null" json:"issuedBy"`
	IssuedAt time.Time `gorm:"type:timestamptz;not null" json:"issuedAt"`

	// Resolved field values frozen at issuance time. Later template edits
	// must not retroactively alter already-issued certificates.
	FieldSnapshot datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"fieldSnapshot"`

	ArtifactFileId string `gorm:"type:text;not null" json:"artifactFileId"`
	ArtifactFile   File   `gorm:"foreignKey:ArtifactFileId;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"artifactFile,omitempty"`

	Notes string `gorm:"type:text" json:"notes"`

	RevokedReason *string    `gorm:"type:text" json:"revokedReason,omitempty"`
	RevokedBy     *string    `gorm:"type:text" json:"revokedBy,omitempty"`
	RevokedAt     *time.Time `gorm:"type:timestamptz" json:"revokedAt,omitempty"`

	CertificateTemplate CertificateTemplate `gorm:"constraint:OnDelete:SET NULL" json:"certificateTemplate,omitempty"`
	Student             Student             `gorm:"constraint:OnDelete:SET NULL" json:"student,omitempty"`
	Enrollment          *Enrollment         `gorm:"constraint:OnDelete:SET NULL" json:"enrollment,omitempty"`
}

func (ci CertificateIssuance) TableName() string {
	return "certificate_issuances"
}

func (ci CertificateIssuance) IsRevoked() bool {
	return ci.Status == constant.IssuanceStatusRevoked
}

// SetFieldSnapshot freezes the resolved values onto the row.
func (ci *CertificateIssuance) SetFieldSnapshot(values map[certforge.FieldKey]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return err
	}

	ci.FieldSnapshot = datatypes.JSON(data)
	return nil
}

func (ci CertificateIssuance) FieldSnapshotValues() (map[certforge.FieldKey]string, error) {
	values := map[certforge.FieldKey]string{}
	if len(ci.FieldSnapshot) == 0 {
		return values, nil
	}

	if err := json.Unmarshal(ci.FieldSnapshot, &values); err != nil {
		return nil, err
	}

	return values, nil
}
