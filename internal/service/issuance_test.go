package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedClock struct {
	at time.Time
}

func (c fixedClock) Now() time.Time { return c.at }

type fakeTemplateStore struct {
	templates map[string]*model.CertificateTemplate
}

func (f *fakeTemplateStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateTemplate, error) {
	t, ok := f.templates[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

type fakeStudentStore struct {
	students map[string]*model.Student
}

func (f *fakeStudentStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type fakeEnrollmentStore struct {
	enrollments map[string]*model.Enrollment
	// keyed by studentId for scoped lookups
	byStudent map[string]*model.Enrollment
	findErr   map[string]error
}

func (f *fakeEnrollmentStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Enrollment, error) {
	e, ok := f.enrollments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return e, nil
}

func (f *fakeEnrollmentStore) FindForStudent(ctx context.Context, tx *gorm.DB, studentId string, courseId, classId *string) (*model.Enrollment, error) {
	if err := f.findErr[studentId]; err != nil {
		return nil, err
	}
	return f.byStudent[studentId], nil
}

type fakeIssuanceStore struct {
	rows      []*model.CertificateIssuance
	createErr error
	// when set, the first Create fails with ErrDuplicateIssuance and plants
	// raceWinner as the already-committed row, mimicking a lost insert race
	raceWinner *model.CertificateIssuance
	raced      bool
}

func sameTriple(row *model.CertificateIssuance, templateId, studentId string, enrollmentId *string) bool {
	if row.CertificateTemplateID != templateId || row.StudentID != studentId {
		return false
	}
	if enrollmentId == nil {
		return row.EnrollmentID == nil
	}
	return row.EnrollmentID != nil && *row.EnrollmentID == *enrollmentId
}

func (f *fakeIssuanceStore) Create(ctx context.Context, tx *gorm.DB, issuance *model.CertificateIssuance) (*model.CertificateIssuance, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.raceWinner != nil && !f.raced {
		f.raced = true
		f.rows = append(f.rows, f.raceWinner)
		return nil, repository.ErrDuplicateIssuance
	}
	for _, row := range f.rows {
		if row.Status == constant.IssuanceStatusIssued && sameTriple(row, issuance.CertificateTemplateID, issuance.StudentID, issuance.EnrollmentID) {
			return nil, repository.ErrDuplicateIssuance
		}
	}
	if issuance.ID == "" {
		issuance.ID = fmt.Sprintf("issuance-%d", len(f.rows)+1)
	}
	f.rows = append(f.rows, issuance)
	return issuance, nil
}

func (f *fakeIssuanceStore) FindIssued(ctx context.Context, tx *gorm.DB, templateId, studentId string, enrollmentId *string) (*model.CertificateIssuance, error) {
	for _, row := range f.rows {
		if row.Status == constant.IssuanceStatusIssued && sameTriple(row, templateId, studentId, enrollmentId) {
			return row, nil
		}
	}
	return nil, nil
}

func (f *fakeIssuanceStore) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateIssuance, error) {
	for _, row := range f.rows {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeIssuanceStore) Revoke(ctx context.Context, tx *gorm.DB, id, reason, actor string, at time.Time) error {
	for _, row := range f.rows {
		if row.ID == id {
			if row.Status != constant.IssuanceStatusIssued {
				return repository.ErrAlreadyRevoked
			}
			row.Status = constant.IssuanceStatusRevoked
			row.RevokedReason = &reason
			row.RevokedBy = &actor
			row.RevokedAt = &at
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeIssuanceStore) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeSequenceStore struct {
	values map[int]int
}

func (f *fakeSequenceStore) Next(ctx context.Context, tx *gorm.DB, year int) (int, error) {
	if f.values == nil {
		f.values = map[int]int{}
	}
	f.values[year]++
	return f.values[year], nil
}

type fakeRenderer struct {
	renderErr error
	rendered  []string
	deleted   []string
	nextId    int
}

func (f *fakeRenderer) RenderArtifact(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, certificateNumber string) (*model.File, error) {
	if f.renderErr != nil {
		return nil, f.renderErr
	}
	f.nextId++
	f.rendered = append(f.rendered, certificateNumber)
	return &model.File{
		BaseModel:      model.BaseModel{ID: fmt.Sprintf("file-%d", f.nextId)},
		FileName:       certificateNumber + ".pdf",
		UniqueFileName: "templates/t1/issued/" + certificateNumber + ".pdf",
		BucketName:     "certforge",
	}, nil
}

func (f *fakeRenderer) DeleteArtifact(ctx context.Context, file *model.File) error {
	f.deleted = append(f.deleted, file.ID)
	return nil
}

type fakeAuditSink struct {
	entries   []*model.AuditLog
	appendErr error
}

func (f *fakeAuditSink) Append(ctx context.Context, entry *model.AuditLog) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

type fakeNotifier struct {
	notified []string
}

func (f *fakeNotifier) NotifyIssued(student *model.Student, issuance *model.CertificateIssuance) error {
	f.notified = append(f.notified, student.ID)
	return nil
}

type issuanceFixture struct {
	templates   *fakeTemplateStore
	students    *fakeStudentStore
	enrollments *fakeEnrollmentStore
	issuances   *fakeIssuanceStore
	sequences   *fakeSequenceStore
	renderer    *fakeRenderer
	audit       *fakeAuditSink
	notifier    *fakeNotifier
	service     *IssuanceService
}

func newIssuanceFixture(t *testing.T) *issuanceFixture {
	t.Helper()

	f := &issuanceFixture{
		templates: &fakeTemplateStore{templates: map[string]*model.CertificateTemplate{
			"template-1": {
				BaseModel:   model.BaseModel{ID: "template-1"},
				Name:        "Course Completion",
				Size:        certforge.PageSizeA4,
				Orientation: certforge.OrientationLandscape,
				Background:  "#ffffff",
				Status:      constant.TemplateStatusActive,
			},
			"template-draft": {
				BaseModel:   model.BaseModel{ID: "template-draft"},
				Name:        "Unfinished",
				Size:        certforge.PageSizeA4,
				Orientation: certforge.OrientationLandscape,
				Status:      constant.TemplateStatusDraft,
			},
		}},
		students: &fakeStudentStore{students: map[string]*model.Student{
			"student-1": {BaseModel: model.BaseModel{ID: "student-1"}, FullName: "Sokha Meas", Email: "sokha@example.com"},
			"student-2": {BaseModel: model.BaseModel{ID: "student-2"}, FullName: "Dara Chan", Email: "dara@example.com"},
		}},
		enrollments: &fakeEnrollmentStore{
			enrollments: map[string]*model.Enrollment{},
			byStudent:   map[string]*model.Enrollment{},
			findErr:     map[string]error{},
		},
		issuances: &fakeIssuanceStore{},
		sequences: &fakeSequenceStore{},
		renderer:  &fakeRenderer{},
		audit:     &fakeAuditSink{},
		notifier:  &fakeNotifier{},
	}

	clock := fixedClock{at: time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)}
	f.service = NewIssuanceService(zap.NewNop().Sugar(), clock, f.templates, f.students, f.enrollments, f.issuances, f.sequences, f.renderer, f.audit, f.notifier)
	return f
}

func TestIssue(t *testing.T) {
	f := newIssuanceFixture(t)

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		Actor:         "admin-1",
	})

	if !result.Success() {
		t.Fatalf("Issue failed: %s", result.Message)
	}
	if result.Issuance.CertificateNumber != "CERT-2026-000001" {
		t.Errorf("certificate number = %q, want CERT-2026-000001", result.Issuance.CertificateNumber)
	}
	if result.Issuance.Status != constant.IssuanceStatusIssued {
		t.Errorf("status = %q, want issued", result.Issuance.Status)
	}
	if result.Issuance.IssuedBy != "admin-1" {
		t.Errorf("issuedBy = %q, want admin-1", result.Issuance.IssuedBy)
	}
	if len(f.issuances.rows) != 1 {
		t.Fatalf("got %d issuance rows, want 1", len(f.issuances.rows))
	}

	snapshot, err := result.Issuance.FieldSnapshotValues()
	if err != nil {
		t.Fatalf("FieldSnapshotValues: %v", err)
	}
	if snapshot[certforge.FieldStudentName] != "Sokha Meas" {
		t.Errorf("snapshot student name = %q, want Sokha Meas", snapshot[certforge.FieldStudentName])
	}
	if snapshot[certforge.FieldIssueDate] != "March 14, 2026" {
		t.Errorf("snapshot issue date = %q, want March 14, 2026", snapshot[certforge.FieldIssueDate])
	}

	if len(f.audit.entries) != 1 || f.audit.entries[0].Action != constant.AuditActionIssued {
		t.Errorf("expected one issued audit entry, got %+v", f.audit.entries)
	}
	if len(f.notifier.notified) != 1 || f.notifier.notified[0] != "student-1" {
		t.Errorf("expected student-1 notified, got %v", f.notifier.notified)
	}
}

func TestIssueSequenceAdvances(t *testing.T) {
	f := newIssuanceFixture(t)

	first := f.service.Issue(context.Background(), IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1"})
	second := f.service.Issue(context.Background(), IssueParams{CertificateID: "template-1", StudentID: "student-2", Actor: "admin-1"})

	if !first.Success() || !second.Success() {
		t.Fatalf("expected both issuances to succeed: %s / %s", first.Message, second.Message)
	}
	if second.Issuance.CertificateNumber != "CERT-2026-000002" {
		t.Errorf("second certificate number = %q, want CERT-2026-000002", second.Issuance.CertificateNumber)
	}
}

func TestIssueDuplicate(t *testing.T) {
	t.Run("conflict without skip", func(t *testing.T) {
		f := newIssuanceFixture(t)
		params := IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1"}

		if result := f.service.Issue(context.Background(), params); !result.Success() {
			t.Fatalf("first issue failed: %s", result.Message)
		}

		result := f.service.Issue(context.Background(), params)
		if result.Status != IssueStatusConflict {
			t.Fatalf("status = %v, want conflict", result.Status)
		}
		if result.Issuance == nil || result.Issuance.CertificateNumber != "CERT-2026-000001" {
			t.Errorf("conflict result should carry the existing issuance, got %+v", result.Issuance)
		}
		if len(f.issuances.rows) != 1 {
			t.Errorf("got %d rows after duplicate attempt, want 1", len(f.issuances.rows))
		}
	})

	t.Run("skipped with skip semantics", func(t *testing.T) {
		f := newIssuanceFixture(t)
		params := IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1", SkipExisting: true}

		if result := f.service.Issue(context.Background(), params); !result.Success() {
			t.Fatalf("first issue failed: %s", result.Message)
		}

		result := f.service.Issue(context.Background(), params)
		if result.Status != IssueStatusSkipped {
			t.Fatalf("status = %v, want skipped", result.Status)
		}
		if len(f.renderer.rendered) != 1 {
			t.Errorf("duplicate attempt should not render, got %d renders", len(f.renderer.rendered))
		}
	})

	t.Run("revoked issuance does not block reissue", func(t *testing.T) {
		f := newIssuanceFixture(t)
		params := IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1"}

		first := f.service.Issue(context.Background(), params)
		if !first.Success() {
			t.Fatalf("first issue failed: %s", first.Message)
		}
		if err := f.service.Revoke(context.Background(), first.Issuance.ID, "typo in name", "admin-1"); err != nil {
			t.Fatalf("Revoke: %v", err)
		}

		second := f.service.Issue(context.Background(), params)
		if !second.Success() {
			t.Fatalf("reissue after revoke failed: %s", second.Message)
		}
		if second.Issuance.CertificateNumber == first.Issuance.CertificateNumber {
			t.Errorf("reissue must mint a fresh number, both are %q", first.Issuance.CertificateNumber)
		}
	})
}

func TestIssueInactiveTemplate(t *testing.T) {
	f := newIssuanceFixture(t)

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-draft",
		StudentID:     "student-1",
		Actor:         "admin-1",
	})

	if result.Status != IssueStatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if !strings.Contains(result.Message, "not active") {
		t.Errorf("message %q should name the inactive status", result.Message)
	}
	if len(f.issuances.rows) != 0 {
		t.Errorf("no row should be created for an inactive template")
	}
}

func TestIssueRenderFailureLeavesNoRow(t *testing.T) {
	f := newIssuanceFixture(t)
	f.renderer.renderErr = errors.New("font not found")

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		Actor:         "admin-1",
	})

	if result.Status != IssueStatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if len(f.issuances.rows) != 0 {
		t.Errorf("render failure must not leave an issuance row, got %d", len(f.issuances.rows))
	}
	if len(f.audit.entries) != 0 {
		t.Errorf("render failure must not append audit entries, got %d", len(f.audit.entries))
	}
}

func TestIssueLostInsertRace(t *testing.T) {
	f := newIssuanceFixture(t)
	f.issuances.raceWinner = &model.CertificateIssuance{
		BaseModel:             model.BaseModel{ID: "winner"},
		CertificateTemplateID: "template-1",
		StudentID:             "student-1",
		CertificateNumber:     "CERT-2026-000099",
		Status:                constant.IssuanceStatusIssued,
	}

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		Actor:         "admin-1",
		SkipExisting:  true,
	})

	if result.Status != IssueStatusSkipped {
		t.Fatalf("status = %v, want skipped after lost race", result.Status)
	}
	if result.Issuance == nil || result.Issuance.ID != "winner" {
		t.Errorf("result should carry the winning issuance, got %+v", result.Issuance)
	}
	if len(f.renderer.deleted) != 1 {
		t.Errorf("orphaned artifact should be cleaned up, deleted=%v", f.renderer.deleted)
	}
}

func TestIssueAuditFailureSurfaced(t *testing.T) {
	f := newIssuanceFixture(t)
	f.audit.appendErr = errors.New("audit store unavailable")

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		Actor:         "admin-1",
	})

	if !result.Success() {
		t.Fatalf("issuance must stand when only the audit append fails: %s", result.Message)
	}
	if !strings.Contains(result.Message, "audit log append failed") {
		t.Errorf("message %q should surface the audit failure", result.Message)
	}
	if len(f.issuances.rows) != 1 {
		t.Errorf("issuance row should exist, got %d", len(f.issuances.rows))
	}
}

func TestIssueWithEnrollment(t *testing.T) {
	f := newIssuanceFixture(t)
	courseId := "course-1"
	completed := time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC)
	f.enrollments.enrollments["enrollment-1"] = &model.Enrollment{
		BaseModel:   model.BaseModel{ID: "enrollment-1"},
		StudentID:   "student-1",
		CourseID:    &courseId,
		CompletedAt: &completed,
		Course:      &model.Course{BaseModel: model.BaseModel{ID: courseId}, Name: "Intro to Go"},
	}

	enrollmentId := "enrollment-1"
	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		EnrollmentID:  &enrollmentId,
		Actor:         "admin-1",
	})

	if !result.Success() {
		t.Fatalf("Issue failed: %s", result.Message)
	}
	snapshot, err := result.Issuance.FieldSnapshotValues()
	if err != nil {
		t.Fatalf("FieldSnapshotValues: %v", err)
	}
	if snapshot[certforge.FieldCourseName] != "Intro to Go" {
		t.Errorf("course name = %q, want Intro to Go", snapshot[certforge.FieldCourseName])
	}
	if snapshot[certforge.FieldCompletionDate] != "February 28, 2026" {
		t.Errorf("completion date = %q, want February 28, 2026", snapshot[certforge.FieldCompletionDate])
	}
}

func TestIssueOverridesWin(t *testing.T) {
	f := newIssuanceFixture(t)

	result := f.service.Issue(context.Background(), IssueParams{
		CertificateID: "template-1",
		StudentID:     "student-1",
		Actor:         "admin-1",
		Overrides: map[certforge.FieldKey]string{
			certforge.FieldCourseName: "Guest Lecture Series",
		},
	})

	if !result.Success() {
		t.Fatalf("Issue failed: %s", result.Message)
	}
	snapshot, _ := result.Issuance.FieldSnapshotValues()
	if snapshot[certforge.FieldCourseName] != "Guest Lecture Series" {
		t.Errorf("override lost, course name = %q", snapshot[certforge.FieldCourseName])
	}
}

func TestRevoke(t *testing.T) {
	f := newIssuanceFixture(t)

	result := f.service.Issue(context.Background(), IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1"})
	if !result.Success() {
		t.Fatalf("Issue failed: %s", result.Message)
	}

	if err := f.service.Revoke(context.Background(), result.Issuance.ID, "issued in error", "admin-2"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	row := f.issuances.rows[0]
	if !row.IsRevoked() {
		t.Errorf("issuance should be revoked, status = %q", row.Status)
	}
	if row.RevokedReason == nil || *row.RevokedReason != "issued in error" {
		t.Errorf("revoked reason not recorded: %+v", row.RevokedReason)
	}
	if row.RevokedBy == nil || *row.RevokedBy != "admin-2" {
		t.Errorf("revoking actor not recorded: %+v", row.RevokedBy)
	}

	err := f.service.Revoke(context.Background(), result.Issuance.ID, "again", "admin-2")
	if err == nil || !strings.Contains(err.Error(), "already revoked") {
		t.Errorf("second revoke should report already revoked, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := newIssuanceFixture(t)

	result := f.service.Issue(context.Background(), IssueParams{CertificateID: "template-1", StudentID: "student-1", Actor: "admin-1"})
	if !result.Success() {
		t.Fatalf("Issue failed: %s", result.Message)
	}

	if err := f.service.Delete(context.Background(), result.Issuance.ID, "admin-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.issuances.rows) != 0 {
		t.Errorf("row should be gone, got %d", len(f.issuances.rows))
	}

	err := f.service.Delete(context.Background(), "missing", "admin-1")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("deleting a missing issuance should report not found, got %v", err)
	}
}
