package repository

import (
	"context"
	"errors"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type EnrollmentRepository struct {
	*baseRepository
}

func (er EnrollmentRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Enrollment, error) {
	er.logger.Debugf("Get enrollment by id: %s", id)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var enrollment model.Enrollment
	if err := db.WithContext(ctx).Model(&model.Enrollment{}).Where(model.Enrollment{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).Preload("Student").Preload("Course").Preload("Class").First(&enrollment).Error; err != nil {
		return &enrollment, err
	}

	return &enrollment, nil
}

// FindForStudent resolves the student's enrollment for a course or class
// scope. Returns nil when the student has no matching enrollment, bulk
// issuance then falls back to the bare (template, student) pair.
func (er EnrollmentRepository) FindForStudent(ctx context.Context, tx *gorm.DB, studentId string, courseId, classId *string) (*model.Enrollment, error) {
	er.logger.Debugf("Find enrollment for student: %s", studentId)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	query := db.WithContext(ctx).Model(&model.Enrollment{}).Where(map[string]any{"student_id": studentId})
	if courseId != nil {
		query = query.Where("course_id = ?", *courseId)
	}
	if classId != nil {
		query = query.Where("class_id = ?", *classId)
	}

	var enrollment model.Enrollment
	if err := query.Preload("Course").Preload("Class").Order("created_at desc").First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &enrollment, nil
}

func (er EnrollmentRepository) Create(ctx context.Context, tx *gorm.DB, enrollment *model.Enrollment) (*model.Enrollment, error) {
	er.logger.Debugf("Create enrollment for student: %s", enrollment.StudentID)

	db := er.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Enrollment{}).Create(enrollment).Error; err != nil {
		return enrollment, err
	}

	return enrollment, nil
}
