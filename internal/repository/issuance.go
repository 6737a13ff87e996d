package repository

import (
	"context"
	"errors"
	"time"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

// ErrDuplicateIssuance maps the partial unique index on
// (certificate_template_id, student_id, enrollment_id) WHERE status='issued'
// back into the domain. Two concurrent issuance attempts for the same triple
// cannot both insert.
var ErrDuplicateIssuance = errors.New("an issued certificate already exists for this student and enrollment")

type IssuanceRepository struct {
	*baseRepository
}

func (ir IssuanceRepository) Create(ctx context.Context, tx *gorm.DB, issuance *model.CertificateIssuance) (*model.CertificateIssuance, error) {
	ir.logger.Debugf("Create certificate issuance: %s", issuance.CertificateNumber)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Create(issuance).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return issuance, ErrDuplicateIssuance
		}
		return issuance, err
	}

	return issuance, nil
}

// FindIssued returns the active issuance for the triple, or nil when none
// exists. A nil enrollment id collapses the triple to (template, student).
func (ir IssuanceRepository) FindIssued(ctx context.Context, tx *gorm.DB, templateId, studentId string, enrollmentId *string) (*model.CertificateIssuance, error) {
	ir.logger.Debugf("Find issued certificate for template %s, student %s", templateId, studentId)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Where(map[string]any{
		"certificate_template_id": templateId,
		"student_id":              studentId,
		"status":                  constant.IssuanceStatusIssued,
	})
	if enrollmentId == nil {
		query = query.Where("enrollment_id IS NULL")
	} else {
		query = query.Where("enrollment_id = ?", *enrollmentId)
	}

	var issuance model.CertificateIssuance
	if err := query.First(&issuance).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &issuance, nil
}

func (ir IssuanceRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateIssuance, error) {
	ir.logger.Debugf("Get certificate issuance by id: %s", id)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var issuance model.CertificateIssuance
	if err := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Where(model.CertificateIssuance{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Preload("ArtifactFile").Preload("CertificateTemplate").Preload("Student").First(&issuance).Error; err != nil {
		return &issuance, err
	}

	return &issuance, nil
}

func (ir IssuanceRepository) GetByNumber(ctx context.Context, tx *gorm.DB, certificateNumber string) (*model.CertificateIssuance, error) {
	ir.logger.Debugf("Get certificate issuance by number: %s", certificateNumber)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var issuance model.CertificateIssuance
	if err := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Where(map[string]any{
		"certificate_number": certificateNumber,
	}).Preload("CertificateTemplate").Preload("Student").First(&issuance).Error; err != nil {
		return &issuance, err
	}

	return &issuance, nil
}

func (ir IssuanceRepository) ListByTemplate(ctx context.Context, tx *gorm.DB, templateId string, page, pageSize uint) (*[]model.CertificateIssuance, int64, error) {
	ir.logger.Debugf("List certificate issuances by template id: %s", templateId)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var issuances []model.CertificateIssuance
	total := int64(0)

	query := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Where(map[string]any{
		"certificate_template_id": templateId,
	})

	if err := query.Count(&total).Error; err != nil {
		return &issuances, total, err
	}

	if err := query.Preload("ArtifactFile").Preload("Student").Order("issued_at desc").
		Offset(int((page - 1) * pageSize)).Limit(int(pageSize)).Find(&issuances).Error; err != nil {
		return &issuances, total, err
	}

	return &issuances, total, nil
}

func (ir IssuanceRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentId string) ([]*model.CertificateIssuance, error) {
	ir.logger.Debugf("List certificate issuances by student id: %s", studentId)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var issuances []*model.CertificateIssuance
	if err := db.WithContext(ctx).Model(&model.CertificateIssuance{}).Where(map[string]any{
		"student_id": studentId,
	}).Preload("ArtifactFile").Preload("CertificateTemplate").Order("issued_at desc").Find(&issuances).Error; err != nil {
		return issuances, err
	}

	return issuances, nil
}

// Revoke flips an issued row to revoked. Returns ErrAlreadyRevoked when the
// row is not in issued state, revocation is irreversible.
var ErrAlreadyRevoked = errors.New("certificate issuance already revoked")

func (ir IssuanceRepository) Revoke(ctx context.Context, tx *gorm.DB, id, reason, actor string, at time.Time) error {
	ir.logger.Debugf("Revoke certificate issuance: %s", id)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	result := db.WithContext(ctx).Model(&model.CertificateIssuance{}).
		Where("id = ? AND status = ?", id, constant.IssuanceStatusIssued).
		Updates(map[string]any{
			"status":         constant.IssuanceStatusRevoked,
			"revoked_reason": reason,
			"revoked_by":     actor,
			"revoked_at":     at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyRevoked
	}

	return nil
}

func (ir IssuanceRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	ir.logger.Debugf("Delete certificate issuance: %s", id)

	db := ir.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Where(model.CertificateIssuance{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Delete(&model.CertificateIssuance{}).Error
}
