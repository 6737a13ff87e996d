package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openlearn/certforge/internal/constant"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stores the issuance service depends on. Declared here so tests can swap in
// fakes, the gorm repositories satisfy them directly.
type TemplateStore interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateTemplate, error)
}

type StudentStore interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Student, error)
}

type EnrollmentStore interface {
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Enrollment, error)
	FindForStudent(ctx context.Context, tx *gorm.DB, studentId string, courseId, classId *string) (*model.Enrollment, error)
}

type IssuanceStore interface {
	Create(ctx context.Context, tx *gorm.DB, issuance *model.CertificateIssuance) (*model.CertificateIssuance, error)
	FindIssued(ctx context.Context, tx *gorm.DB, templateId, studentId string, enrollmentId *string) (*model.CertificateIssuance, error)
	GetById(ctx context.Context, tx *gorm.DB, id string) (*model.CertificateIssuance, error)
	Revoke(ctx context.Context, tx *gorm.DB, id, reason, actor string, at time.Time) error
	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

type SequenceStore interface {
	Next(ctx context.Context, tx *gorm.DB, year int) (int, error)
}

// ArtifactRenderer renders the durable fixed-page document and persists it to
// the artifact store, returning the stored file.
type ArtifactRenderer interface {
	RenderArtifact(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, certificateNumber string) (*model.File, error)
	DeleteArtifact(ctx context.Context, file *model.File) error
}

// AuditSink records domain actions. Appends are best-effort, a sink failure
// never rolls back the action it describes.
type AuditSink interface {
	Append(ctx context.Context, entry *model.AuditLog) error
}

// Notifier tells the student their certificate is ready. Optional and
// best-effort.
type Notifier interface {
	NotifyIssued(student *model.Student, issuance *model.CertificateIssuance) error
}

type IssueStatus int

const (
	IssueStatusIssued IssueStatus = iota
	// Duplicate with skip semantics requested, not an error and not a success,
	// counted separately in bulk results.
	IssueStatusSkipped
	// Duplicate without skip semantics, callers can branch on it.
	IssueStatusConflict
	IssueStatusFailed
)

type IssueParams struct {
	CertificateID string
	StudentID     string
	EnrollmentID  *string
	Notes         string
	// Ad hoc issuance-time customization, wins over computed field values.
	Overrides map[certforge.FieldKey]string
	// Duplicate-skip semantics: an existing issuance for the triple yields a
	// skipped result instead of a conflict.
	SkipExisting bool
	Actor        string
}

type IssueResult struct {
	Status   IssueStatus
	Issuance *model.CertificateIssuance
	Message  string
}

func (r IssueResult) Success() bool {
	return r.Status == IssueStatusIssued
}

type IssuanceService struct {
	logger      *zap.SugaredLogger
	clock       Clock
	templates   TemplateStore
	students    StudentStore
	enrollments EnrollmentStore
	issuances   IssuanceStore
	sequences   SequenceStore
	renderer    ArtifactRenderer
	audit       AuditSink
	notifier    Notifier
}

func NewIssuanceService(logger *zap.SugaredLogger, clock Clock, templates TemplateStore, students StudentStore, enrollments EnrollmentStore, issuances IssuanceStore, sequences SequenceStore, renderer ArtifactRenderer, audit AuditSink, notifier Notifier) *IssuanceService {
	return &IssuanceService{
		logger:      logger,
		clock:       clock,
		templates:   templates,
		students:    students,
		enrollments: enrollments,
		issuances:   issuances,
		sequences:   sequences,
		renderer:    renderer,
		audit:       audit,
		notifier:    notifier,
	}
}

func failed(format string, args ...any) IssueResult {
	return IssueResult{Status: IssueStatusFailed, Message: fmt.Sprintf(format, args...)}
}

// Issue renders and persists one certificate for a (certificate, student,
// enrollment) triple. At most one active issuance may exist per triple, the
// partial unique index on the issuance table backstops the duplicate check
// against concurrent attempts.
func (s *IssuanceService) Issue(ctx context.Context, p IssueParams) IssueResult {
	template, err := s.templates.GetById(ctx, nil, p.CertificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failed("certificate template %s not found", p.CertificateID)
		}
		return failed("failed to load certificate template %s: %v", p.CertificateID, err)
	}

	if !template.IsActive() {
		return failed("certificate %s is not active (status: %s)", template.Name, template.Status)
	}

	student, err := s.students.GetById(ctx, nil, p.StudentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failed("student %s not found", p.StudentID)
		}
		return failed("failed to load student %s: %v", p.StudentID, err)
	}

	var enrollment *model.Enrollment
	if p.EnrollmentID != nil {
		enrollment, err = s.enrollments.GetById(ctx, nil, *p.EnrollmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return failed("enrollment %s not found for student %s", *p.EnrollmentID, p.StudentID)
			}
			return failed("failed to load enrollment %s: %v", *p.EnrollmentID, err)
		}
	}

	existing, err := s.issuances.FindIssued(ctx, nil, template.ID, student.ID, p.EnrollmentID)
	if err != nil {
		return failed("failed to check existing issuance for student %s: %v", student.ID, err)
	}
	if existing != nil {
		return s.duplicateResult(existing, student, p.SkipExisting)
	}

	now := s.clock.Now()

	seq, err := s.sequences.Next(ctx, nil, now.Year())
	if err != nil {
		return failed("failed to reserve certificate number: %v", err)
	}
	number := fmt.Sprintf("CERT-%d-%06d", now.Year(), seq)

	values := certforge.ResolveFields(certforge.ModeIssuance, resolveInput(student, enrollment, number, now), p.Overrides)

	renderTemplate, err := template.ToRenderTemplate()
	if err != nil {
		return failed("failed to decode template %s: %v", template.Name, err)
	}

	// The artifact must exist before the row does. A failed render or store
	// write leaves no issuance behind.
	renderCtx, cancel := context.WithTimeout(ctx, constant.RENDER_TIMEOUT_DURATION)
	defer cancel()

	artifact, err := s.renderer.RenderArtifact(renderCtx, renderTemplate, values, number)
	if err != nil {
		return failed("failed to render certificate %s for student %s: %v", number, student.FullName, err)
	}

	issuance := &model.CertificateIssuance{
		CertificateTemplateID: template.ID,
		StudentID:             student.ID,
		EnrollmentID:          p.EnrollmentID,
		CertificateNumber:     number,
		Status:                constant.IssuanceStatusIssued,
		IssuedBy:              p.Actor,
		IssuedAt:              now,
		ArtifactFileId:        artifact.ID,
		Notes:                 p.Notes,
	}
	if err := issuance.SetFieldSnapshot(values); err != nil {
		return failed("failed to snapshot field values: %v", err)
	}

	if _, err := s.issuances.Create(ctx, nil, issuance); err != nil {
		// The orphaned artifact is useless once the insert failed.
		if delErr := s.renderer.DeleteArtifact(ctx, artifact); delErr != nil {
			s.logger.Errorf("Failed to clean up artifact %s after insert failure: %v", artifact.ID, delErr)
		}

		if errors.Is(err, repository.ErrDuplicateIssuance) {
			// Lost the race against a concurrent issuance of the same triple.
			winner, findErr := s.issuances.FindIssued(ctx, nil, template.ID, student.ID, p.EnrollmentID)
			if findErr == nil && winner != nil {
				return s.duplicateResult(winner, student, p.SkipExisting)
			}
			return s.duplicateResult(nil, student, p.SkipExisting)
		}

		return failed("failed to persist issuance %s: %v", number, err)
	}

	message := fmt.Sprintf("certificate %s issued to %s", number, student.FullName)
	if err := s.audit.Append(ctx, &model.AuditLog{
		Entity:      constant.AuditEntityIssuance,
		EntityID:    issuance.ID,
		Action:      constant.AuditActionIssued,
		Actor:       p.Actor,
		Description: message,
		Timestamp:   now,
	}); err != nil {
		// Audit is best-effort, the issuance stands, but the failure is
		// surfaced to the caller.
		s.logger.Errorf("Audit append failed for issuance %s: %v", issuance.ID, err)
		message = fmt.Sprintf("%s (audit log append failed: %v)", message, err)
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyIssued(student, issuance); err != nil {
			s.logger.Errorf("Issuance notification failed for student %s: %v", student.ID, err)
		}
	}

	return IssueResult{Status: IssueStatusIssued, Issuance: issuance, Message: message}
}

func (s *IssuanceService) duplicateResult(existing *model.CertificateIssuance, student *model.Student, skip bool) IssueResult {
	if skip {
		return IssueResult{
			Status:   IssueStatusSkipped,
			Issuance: existing,
			Message:  fmt.Sprintf("student %s already has an issued certificate, skipped", student.FullName),
		}
	}

	return IssueResult{
		Status:   IssueStatusConflict,
		Issuance: existing,
		Message:  fmt.Sprintf("certificate already issued to student %s", student.FullName),
	}
}

// Revoke moves an issued certificate to revoked. Irreversible, the artifact
// is kept.
func (s *IssuanceService) Revoke(ctx context.Context, issuanceId, reason, actor string) error {
	issuance, err := s.issuances.GetById(ctx, nil, issuanceId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("issuance %s not found", issuanceId)
		}
		return fmt.Errorf("failed to load issuance %s: %w", issuanceId, err)
	}

	if issuance.IsRevoked() {
		return fmt.Errorf("certificate %s is already revoked", issuance.CertificateNumber)
	}

	now := s.clock.Now()
	if err := s.issuances.Revoke(ctx, nil, issuance.ID, reason, actor, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyRevoked) {
			return fmt.Errorf("certificate %s is already revoked", issuance.CertificateNumber)
		}
		return fmt.Errorf("failed to revoke certificate %s: %w", issuance.CertificateNumber, err)
	}

	if err := s.audit.Append(ctx, &model.AuditLog{
		Entity:      constant.AuditEntityIssuance,
		EntityID:    issuance.ID,
		Action:      constant.AuditActionRevoked,
		Actor:       actor,
		Description: fmt.Sprintf("certificate %s revoked: %s", issuance.CertificateNumber, reason),
		Timestamp:   now,
	}); err != nil {
		s.logger.Errorf("Audit append failed for revocation of %s: %v", issuance.ID, err)
	}

	return nil
}

// Delete removes the issuance row and its artifact. An explicit admin action,
// independent of revoke.
func (s *IssuanceService) Delete(ctx context.Context, issuanceId, actor string) error {
	issuance, err := s.issuances.GetById(ctx, nil, issuanceId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("issuance %s not found", issuanceId)
		}
		return fmt.Errorf("failed to load issuance %s: %w", issuanceId, err)
	}

	if err := s.issuances.Delete(ctx, nil, issuance.ID); err != nil {
		return fmt.Errorf("failed to delete issuance %s: %w", issuance.CertificateNumber, err)
	}

	if issuance.ArtifactFileId != "" {
		if err := s.renderer.DeleteArtifact(ctx, &issuance.ArtifactFile); err != nil {
			s.logger.Errorf("Failed to delete artifact of issuance %s: %v", issuance.ID, err)
		}
	}

	if err := s.audit.Append(ctx, &model.AuditLog{
		Entity:      constant.AuditEntityIssuance,
		EntityID:    issuance.ID,
		Action:      constant.AuditActionDeleted,
		Actor:       actor,
		Description: fmt.Sprintf("certificate %s deleted", issuance.CertificateNumber),
		Timestamp:   s.clock.Now(),
	}); err != nil {
		s.logger.Errorf("Audit append failed for deletion of %s: %v", issuance.ID, err)
	}

	return nil
}

func resolveInput(student *model.Student, enrollment *model.Enrollment, number string, issuedAt time.Time) certforge.ResolveInput {
	in := certforge.ResolveInput{
		StudentName:       student.FullName,
		StudentEmail:      student.Email,
		CertificateNumber: number,
		IssueDate:         issuedAt,
	}

	// A nil enrollment is fine, enrollment-derived fields resolve to "".
	if enrollment != nil {
		if enrollment.Course != nil {
			in.CourseName = enrollment.Course.Name
		}
		if enrollment.Class != nil {
			in.ClassName = enrollment.Class.Name
		}
		if enrollment.CompletedAt != nil {
			in.CompletionDate = *enrollment.CompletedAt
		}
	}

	return in
}
