package repository

import (
	"context"

	constant "github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"gorm.io/gorm"
)

type StudentRepository struct {
	*baseRepository
}

func (sr StudentRepository) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Student, error) {
	sr.logger.Debugf("Get student by id: %s", id)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var student model.Student
	if err := db.WithContext(ctx).Model(&model.Student{}).Where(model.Student{
		BaseModel: model.BaseModel{
			ID: id,
		},
	}).First(&student).Error; err != nil {
		return &student, err
	}

	return &student, nil
}

func (sr StudentRepository) Create(ctx context.Context, tx *gorm.DB, student *model.Student) (*model.Student, error) {
	sr.logger.Debugf("Create student: %s", student.Email)

	db := sr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.Student{}).Create(student).Error; err != nil {
		return student, err
	}

	return student, nil
}
