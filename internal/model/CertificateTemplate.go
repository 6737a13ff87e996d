package model

import (
	"encoding/json"
	"fmt"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/pkg/certforge"
	"gorm.io/datatypes"
)

type CertificateTemplate struct {
	BaseModel
	Name        string                  `gorm:"type:varchar(100);not null" json:"name" form:"name" binding:"required,strNotEmpty"`
	Description string                  `gorm:"type:text" json:"description" form:"description"`
	Size        certforge.PageSize      `gorm:"type:varchar(10);not null;default:'A4'" json:"size" form:"size"`
	Orientation certforge.Orientation   `gorm:"type:varchar(10);not null;default:'landscape'" json:"orientation" form:"orientation"`
	Background  string                  `gorm:"type:varchar(20);default:'#ffffff'" json:"background" form:"background"`
	Status      constant.TemplateStatus `gorm:"type:varchar(10);not null;default:'draft';index" json:"status" form:"status"`
	Elements    datatypes.JSON          `gorm:"type:jsonb;not null;default:'[]'" json:"elements" form:"elements"`

	BackgroundFileId *string `gorm:"type:text" json:"backgroundFileId" form:"backgroundFileId"`
	BackgroundFile   *File   `gorm:"foreignKey:BackgroundFileId;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"backgroundFile,omitempty"`
}

func (ct CertificateTemplate) TableName() string {
	return "certificate_templates"
}

// Width and height are always derived from (size, orientation), they are
// never stored independently.
func (ct CertificateTemplate) Dimensions() (float64, float64, error) {
	return certforge.PageDimensions(ct.Size, ct.Orientation)
}

func (ct CertificateTemplate) IsActive() bool {
	return ct.Status == constant.TemplateStatusActive
}

// ToRenderTemplate decodes the element list into the render engine's template
// snapshot.
func (ct CertificateTemplate) ToRenderTemplate() (*certforge.Template, error) {
	var elements certforge.ElementList
	if len(ct.Elements) > 0 {
		if err := json.Unmarshal(ct.Elements, &elements); err != nil {
			return nil, fmt.Errorf("failed to decode elements of template %s: %w", ct.ID, err)
		}
	}

	tpl := &certforge.Template{
		ID:              ct.ID,
		Name:            ct.Name,
		Size:            ct.Size,
		Orientation:     ct.Orientation,
		BackgroundColor: ct.Background,
		Elements:        elements,
	}
	if ct.BackgroundFile != nil {
		tpl.BackgroundImage = ct.BackgroundFile.UniqueFileName
	}

	return tpl, nil
}

// SetElements encodes the element list back onto the row.
func (ct *CertificateTemplate) SetElements(elements certforge.ElementList) error {
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("failed to encode elements: %w", err)
	}

	ct.Elements = datatypes.JSON(data)
	return nil
}
