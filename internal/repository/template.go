package repository

import (
	"context"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type TemplateRepository struct {
	*baseRepository
}

func (tr TemplateRepository) Create(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) (*model.CertificateTemplate, error) {
	tr.logger.Debugf("Create certificate template: %s", template.Name)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.CertificateTemplate{}).Create(template).Error; err != nil {
		return template, err
	}

	return template, nil
}

func (tr TemplateRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateTemplate, error) {
	tr.logger.Debugf("Get certificate template by id: %s", id)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var template model.CertificateTemplate
	if err := db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where(model.CertificateTemplate{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Preload("BackgroundFile").First(&template).Error; err != nil {
		return &template, err
	}

	return &template, nil
}

func (tr TemplateRepository) List(ctx context.Context, tx *gorm.DB, status constant.TemplateStatus, page, pageSize uint) (*[]model.CertificateTemplate, int64, error) {
	tr.logger.Debugf("List certificate templates, status: %s, page: %d", status, page)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var templates []model.CertificateTemplate
	total := int64(0)

	query := db.WithContext(ctx).Model(&model.CertificateTemplate{})
	if status != "" {
		query = query.Where(map[string]any{"status": status})
	}

	if err := query.Count(&total).Error; err != nil {
		return &templates, total, err
	}

	if err := query.Order("created_at desc").Offset(int((page - 1) * pageSize)).Limit(int(pageSize)).Find(&templates).Error; err != nil {
		return &templates, total, err
	}

	return &templates, total, nil
}

func (tr TemplateRepository) Update(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error {
	tr.logger.Debugf("Update certificate template: %s", template.ID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where(model.CertificateTemplate{
		BaseModel: model.BaseModel{
			ID: template.ID,
		},
	}).Select("Name", "Description", "Size", "Orientation", "Background", "BackgroundFileId", "Elements").Updates(template).Error
}

func (tr TemplateRepository) UpdateElements(ctx context.Context, tx *gorm.DB, template *model.CertificateTemplate) error {
	tr.logger.Debugf("Update elements of certificate template: %s", template.ID)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where(model.CertificateTemplate{
		BaseModel: model.BaseModel{
			ID: template.ID,
		},
	}).Update("elements", template.Elements).Error
}

func (tr TemplateRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, id string, status constant.TemplateStatus) error {
	tr.logger.Debugf("Update status of certificate template %s to %s", id, status)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.CertificateTemplate{}).Where(model.CertificateTemplate{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Update("status", status).Error
}

func (tr TemplateRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	tr.logger.Debugf("Delete certificate template: %s", id)

	db := tr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Where(model.CertificateTemplate{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Delete(&model.CertificateTemplate{}).Error
}
