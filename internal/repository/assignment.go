package repository

import (
	"context"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type AssignmentRepository struct {
	*baseRepository
}

func (ar AssignmentRepository) Create(ctx context.Context, tx *gorm.DB, assignment *model.CertificateAssignment) (*model.CertificateAssignment, error) {
	ar.logger.Debugf("Create certificate assignment for template: %s", assignment.CertificateTemplateID)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.CertificateAssignment{}).Create(assignment).Error; err != nil {
		return assignment, err
	}

	return assignment, nil
}

func (ar AssignmentRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateAssignment, error) {
	ar.logger.Debugf("Get certificate assignment by id: %s", id)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var assignment model.CertificateAssignment
	if err := db.WithContext(ctx).Model(&model.CertificateAssignment{}).Where(model.CertificateAssignment{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Preload("CertificateTemplate").First(&assignment).Error; err != nil {
		return &assignment, err
	}

	return &assignment, nil
}

func (ar AssignmentRepository) ListForTarget(ctx context.Context, tx *gorm.DB, courseId, classId *string) ([]*model.CertificateAssignment, error) {
	ar.logger.Debug("List certificate assignments for target")

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.CertificateAssignment{})
	query = whereTarget(query, courseId, classId)

	var assignments []*model.CertificateAssignment
	if err := query.Preload("CertificateTemplate").Order("created_at asc").Find(&assignments).Error; err != nil {
		return assignments, err
	}

	return assignments, nil
}

// FindDefault returns the default assignment for a course or class, nil when
// the target has none.
func (ar AssignmentRepository) FindDefault(ctx context.Context, tx *gorm.DB, courseId, classId *string) (*model.CertificateAssignment, error) {
	ar.logger.Debug("Find default certificate assignment for target")

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.CertificateAssignment{}).Where(map[string]any{"is_default": true})
	query = whereTarget(query, courseId, classId)

	var assignment model.CertificateAssignment
	if err := query.Preload("CertificateTemplate").First(&assignment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &assignment, nil
}

// ClearDefault unsets the default flag for every assignment of the target.
// Callers pair it with MarkDefault inside one transaction so there is never a
// window with zero or two defaults.
func (ar AssignmentRepository) ClearDefault(ctx context.Context, tx *gorm.DB, courseId, classId *string) error {
	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.CertificateAssignment{}).Where(map[string]any{"is_default": true})
	query = whereTarget(query, courseId, classId)

	return query.Update("is_default", false).Error
}

func (ar AssignmentRepository) MarkDefault(ctx context.Context, tx *gorm.DB, id string) error {
	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.CertificateAssignment{}).Where(model.CertificateAssignment{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Update("is_default", true).Error
}

// WithTx exposes the transaction helper so the service layer can compose
// ClearDefault and MarkDefault atomically.
func (ar AssignmentRepository) WithTx(fn func(tx *gorm.DB) error) error {
	return ar.withTx(ar.db, fn)
}

func (ar AssignmentRepository) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	ar.logger.Debugf("Delete certificate assignment: %s", id)

	db := ar.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Where(model.CertificateAssignment{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Delete(&model.CertificateAssignment{}).Error
}

func whereTarget(query *gorm.DB, courseId, classId *string) *gorm.DB {
	if courseId != nil {
		query = query.Where("course_id = ?", *courseId)
	} else {
		query = query.Where("course_id IS NULL")
	}
	if classId != nil {
		query = query.Where("class_id = ?", *classId)
	} else {
		query = query.Where("class_id IS NULL")
	}
	return query
}
