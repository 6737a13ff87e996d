package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/openlearn/certforge/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AssignmentStore interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateAssignment, error)
	ClearDefault(ctx context.Context, tx *gorm.DB, courseId, classId *string) error
	MarkDefault(ctx context.Context, tx *gorm.DB, id string) error
	WithTx(fn func(tx *gorm.DB) error) error
}

// AssignmentService links templates to courses and classes and maintains the
// at-most-one-default invariant per target.
type AssignmentService struct {
	logger      *zap.SugaredLogger
	assignments AssignmentStore
}

func NewAssignmentService(logger *zap.SugaredLogger, assignments AssignmentStore) *AssignmentService {
	return &AssignmentService{logger: logger, assignments: assignments}
}

// SetDefault promotes an assignment to default for its target. The previous
// default is unset in the same transaction, there is never a window with zero
// or two defaults.
func (s *AssignmentService) SetDefault(ctx context.Context, assignmentId string) error {
	assignment, err := s.assignments.GetById(ctx, nil, assignmentId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("assignment %s not found", assignmentId)
		}
		return fmt.Errorf("failed to load assignment %s: %w", assignmentId, err)
	}

	return s.assignments.WithTx(func(tx *gorm.DB) error {
		if err := s.assignments.ClearDefault(ctx, tx, assignment.CourseID, assignment.ClassID); err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}
		if err := s.assignments.MarkDefault(ctx, tx, assignment.ID); err != nil {
			return fmt.Errorf("failed to set default assignment: %w", err)
		}
		return nil
	})
}
