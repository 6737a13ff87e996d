package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/openlearn/certforge/internal/model"
	"go.uber.org/zap"
)

func newBulkFixture(t *testing.T) (*issuanceFixture, *BulkCoordinator) {
	t.Helper()

	f := newIssuanceFixture(t)
	for i := 3; i <= 5; i++ {
		id := fmt.Sprintf("student-%d", i)
		f.students.students[id] = &model.Student{
			BaseModel: model.BaseModel{ID: id},
			FullName:  fmt.Sprintf("Student %d", i),
			Email:     id + "@example.com",
		}
	}

	return f, NewBulkCoordinator(zap.NewNop().Sugar(), f.service, f.enrollments)
}

func TestBulkIssue(t *testing.T) {
	f, bc := newBulkFixture(t)

	result := bc.BulkIssue(context.Background(), BulkIssueParams{
		CertificateID: "template-1",
		StudentIDs:    []string{"student-1", "student-2", "student-3", "student-4", "student-5"},
		Actor:         "admin-1",
	})

	if result.IssuedCount != 5 {
		t.Errorf("issuedCount = %d, want 5", result.IssuedCount)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
	if len(f.issuances.rows) != 5 {
		t.Errorf("got %d issuance rows, want 5", len(f.issuances.rows))
	}
}

func TestBulkIssuePartialFailure(t *testing.T) {
	f, bc := newBulkFixture(t)
	// student-3 does not exist in the student store
	delete(f.students.students, "student-3")

	result := bc.BulkIssue(context.Background(), BulkIssueParams{
		CertificateID: "template-1",
		StudentIDs:    []string{"student-1", "student-2", "student-3", "student-4", "student-5"},
		Actor:         "admin-1",
	})

	if result.IssuedCount != 4 {
		t.Errorf("issuedCount = %d, want 4", result.IssuedCount)
	}
	if result.SkippedCount != 0 {
		t.Errorf("skippedCount = %d, want 0", result.SkippedCount)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %+v", len(result.Errors), result.Errors)
	}
	if result.Errors[0].StudentID != "student-3" {
		t.Errorf("error names student %q, want student-3", result.Errors[0].StudentID)
	}
	// the failing student must not halt the rest of the batch
	if len(f.issuances.rows) != 4 {
		t.Errorf("got %d issuance rows, want 4", len(f.issuances.rows))
	}
}

func TestBulkIssueCountsSkipsSeparately(t *testing.T) {
	f, bc := newBulkFixture(t)

	first := f.service.Issue(context.Background(), IssueParams{CertificateID: "template-1", StudentID: "student-2", Actor: "admin-1"})
	if !first.Success() {
		t.Fatalf("seed issue failed: %s", first.Message)
	}

	result := bc.BulkIssue(context.Background(), BulkIssueParams{
		CertificateID: "template-1",
		StudentIDs:    []string{"student-1", "student-2", "student-3"},
		SkipExisting:  true,
		Actor:         "admin-1",
	})

	if result.IssuedCount != 2 {
		t.Errorf("issuedCount = %d, want 2", result.IssuedCount)
	}
	if result.SkippedCount != 1 {
		t.Errorf("skippedCount = %d, want 1", result.SkippedCount)
	}
	if len(result.Errors) != 0 {
		t.Errorf("unexpected errors: %+v", result.Errors)
	}
}

func TestBulkIssueScopedEnrollment(t *testing.T) {
	f, bc := newBulkFixture(t)
	courseId := "course-1"
	f.enrollments.byStudent["student-1"] = &model.Enrollment{
		BaseModel: model.BaseModel{ID: "enrollment-1"},
		StudentID: "student-1",
		CourseID:  &courseId,
		Course:    &model.Course{BaseModel: model.BaseModel{ID: courseId}, Name: "Intro to Go"},
	}
	f.enrollments.enrollments["enrollment-1"] = f.enrollments.byStudent["student-1"]
	f.enrollments.findErr["student-2"] = errors.New("enrollment store down")

	result := bc.BulkIssue(context.Background(), BulkIssueParams{
		CertificateID: "template-1",
		StudentIDs:    []string{"student-1", "student-2", "student-3"},
		CourseID:      &courseId,
		Actor:         "admin-1",
	})

	// student-1 issues against its enrollment, student-2's lookup error is a
	// per-student failure, student-3 has no enrollment in scope and still
	// issues with enrollment-independent fields
	if result.IssuedCount != 2 {
		t.Errorf("issuedCount = %d, want 2", result.IssuedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].StudentID != "student-2" {
		t.Fatalf("expected one error for student-2, got %+v", result.Errors)
	}
	if !strings.Contains(result.Errors[0].Message, "enrollment") {
		t.Errorf("error message %q should mention the enrollment lookup", result.Errors[0].Message)
	}

	for _, row := range f.issuances.rows {
		if row.StudentID == "student-1" && row.EnrollmentID == nil {
			t.Errorf("student-1 should be issued against enrollment-1")
		}
		if row.StudentID == "student-3" && row.EnrollmentID != nil {
			t.Errorf("student-3 should be issued without an enrollment")
		}
	}
}
