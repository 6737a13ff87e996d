package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openlearn/certforge/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fakeAssignmentStore struct {
	rows    map[string]*model.CertificateAssignment
	markErr error
}

func (f *fakeAssignmentStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateAssignment, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return row, nil
}

func sameTarget(row *model.CertificateAssignment, courseId, classId *string) bool {
	eq := func(a, b *string) bool {
		if a == nil || b == nil {
			return a == nil && b == nil
		}
		return *a == *b
	}
	return eq(row.CourseID, courseId) && eq(row.ClassID, classId)
}

func (f *fakeAssignmentStore) ClearDefault(ctx context.Context, tx *gorm.DB, courseId, classId *string) error {
	for _, row := range f.rows {
		if sameTarget(row, courseId, classId) {
			row.IsDefault = false
		}
	}
	return nil
}

func (f *fakeAssignmentStore) MarkDefault(ctx context.Context, tx *gorm.DB, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	row, ok := f.rows[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	row.IsDefault = true
	return nil
}

// WithTx snapshots the rows and restores them when fn fails, matching the
// rollback the real store gets from the database.
func (f *fakeAssignmentStore) WithTx(fn func(tx *gorm.DB) error) error {
	snapshot := make(map[string]*model.CertificateAssignment, len(f.rows))
	for id, row := range f.rows {
		copied := *row
		snapshot[id] = &copied
	}

	if err := fn(nil); err != nil {
		f.rows = snapshot
		return err
	}
	return nil
}

func (f *fakeAssignmentStore) defaultsFor(courseId, classId *string) []string {
	var ids []string
	for id, row := range f.rows {
		if row.IsDefault && sameTarget(row, courseId, classId) {
			ids = append(ids, id)
		}
	}
	return ids
}

func TestSetDefault(t *testing.T) {
	courseId := "course-1"
	otherCourseId := "course-2"

	store := &fakeAssignmentStore{rows: map[string]*model.CertificateAssignment{
		"a1": {BaseModel: model.BaseModel{ID: "a1"}, CertificateTemplateID: "template-1", CourseID: &courseId, IsDefault: true},
		"a2": {BaseModel: model.BaseModel{ID: "a2"}, CertificateTemplateID: "template-2", CourseID: &courseId},
		"a3": {BaseModel: model.BaseModel{ID: "a3"}, CertificateTemplateID: "template-1", CourseID: &otherCourseId, IsDefault: true},
	}}
	service := NewAssignmentService(zap.NewNop().Sugar(), store)

	if err := service.SetDefault(context.Background(), "a2"); err != nil {
		t.Fatalf("SetDefault: %v", err)
	}

	defaults := store.defaultsFor(&courseId, nil)
	if len(defaults) != 1 || defaults[0] != "a2" {
		t.Errorf("defaults for course-1 = %v, want exactly [a2]", defaults)
	}
	if !store.rows["a3"].IsDefault {
		t.Errorf("default of an unrelated target must be untouched")
	}
}

func TestSetDefaultMissingAssignment(t *testing.T) {
	store := &fakeAssignmentStore{rows: map[string]*model.CertificateAssignment{}}
	service := NewAssignmentService(zap.NewNop().Sugar(), store)

	err := service.SetDefault(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSetDefaultRollsBackOnFailure(t *testing.T) {
	courseId := "course-1"
	store := &fakeAssignmentStore{
		rows: map[string]*model.CertificateAssignment{
			"a1": {BaseModel: model.BaseModel{ID: "a1"}, CertificateTemplateID: "template-1", CourseID: &courseId, IsDefault: true},
			"a2": {BaseModel: model.BaseModel{ID: "a2"}, CertificateTemplateID: "template-2", CourseID: &courseId},
		},
		markErr: errors.New("write failed"),
	}
	service := NewAssignmentService(zap.NewNop().Sugar(), store)

	// MarkDefault fails inside the transaction, so the cleared previous
	// default must come back with the rollback. There is never a window with
	// zero defaults visible after the call.
	err := service.SetDefault(context.Background(), "a2")
	if err == nil {
		t.Fatal("expected SetDefault to fail")
	}
	defaults := store.defaultsFor(&courseId, nil)
	if len(defaults) != 1 || defaults[0] != "a1" {
		t.Errorf("failed promotion must leave the previous default, got %v", defaults)
	}
}
