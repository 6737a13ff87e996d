package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

type BulkIssueParams struct {
	CertificateID string
	// Processed in the order supplied, no reordering or dedup.
	StudentIDs []string
	// Optional scope, used to resolve each student's relevant enrollment.
	CourseID *string
	ClassID  *string
	Notes    string
	// Forwarded to the issuance service per student.
	SkipExisting bool
	Actor        string
}

type BulkIssueError struct {
	StudentID string `json:"studentId"`
	Message   string `json:"message"`
}

type BulkIssueResult struct {
	IssuedCount  int              `json:"issuedCount"`
	SkippedCount int              `json:"skippedCount"`
	Errors       []BulkIssueError `json:"errors"`
}

// BulkCoordinator iterates a target student set and issues per student. One
// student's failure never halts the batch, it lands in Errors while the rest
// of the batch continues. Processing is sequential, each student's issuance
// is its own short transaction so a slow student does not block the others.
type BulkCoordinator struct {
	logger      *zap.SugaredLogger
	issuer      *IssuanceService
	enrollments EnrollmentStore
}

func NewBulkCoordinator(logger *zap.SugaredLogger, issuer *IssuanceService, enrollments EnrollmentStore) *BulkCoordinator {
	return &BulkCoordinator{logger: logger, issuer: issuer, enrollments: enrollments}
}

func (bc *BulkCoordinator) BulkIssue(ctx context.Context, p BulkIssueParams) BulkIssueResult {
	result := BulkIssueResult{Errors: []BulkIssueError{}}

	scoped := p.CourseID != nil || p.ClassID != nil

	for _, studentId := range p.StudentIDs {
		var enrollmentId *string
		if scoped {
			enrollment, err := bc.enrollments.FindForStudent(ctx, nil, studentId, p.CourseID, p.ClassID)
			if err != nil {
				result.Errors = append(result.Errors, BulkIssueError{
					StudentID: studentId,
					Message:   fmt.Sprintf("failed to resolve enrollment for student %s: %v", studentId, err),
				})
				continue
			}
			if enrollment != nil {
				enrollmentId = &enrollment.ID
			}
		}

		issueResult := bc.issuer.Issue(ctx, IssueParams{
			CertificateID: p.CertificateID,
			StudentID:     studentId,
			EnrollmentID:  enrollmentId,
			Notes:         p.Notes,
			SkipExisting:  p.SkipExisting,
			Actor:         p.Actor,
		})

		switch issueResult.Status {
		case IssueStatusIssued:
			result.IssuedCount++
		case IssueStatusSkipped:
			result.SkippedCount++
		default:
			bc.logger.Debugf("Bulk issuance error for student %s: %s", studentId, issueResult.Message)
			result.Errors = append(result.Errors, BulkIssueError{
				StudentID: studentId,
				Message:   issueResult.Message,
			})
		}
	}

	return result
}
