package certforge

import (
	"fmt"
	"time"
)

// FieldKey is the closed set of dynamic-field names a template may reference.
type FieldKey string

const (
	FieldStudentName       FieldKey = "student_name"
	FieldStudentEmail      FieldKey = "student_email"
	FieldCourseName        FieldKey = "course_name"
	FieldClassName         FieldKey = "class_name"
	FieldCertificateNumber FieldKey = "certificate_number"
	FieldIssueDate         FieldKey = "issue_date"
	FieldCompletionDate    FieldKey = "completion_date"
)

func FieldKeys() []FieldKey {
	return []FieldKey{
		FieldStudentName,
		FieldStudentEmail,
		FieldCourseName,
		FieldClassName,
		FieldCertificateNumber,
		FieldIssueDate,
		FieldCompletionDate,
	}
}

type ResolveMode int

const (
	// ModePreview fabricates a sample certificate number so the template
	// editor can show a realistic layout before anything is issued.
	ModePreview ResolveMode = iota
	// ModeIssuance consumes the real reserved number.
	ModeIssuance
)

const longDateLayout = "January 2, 2006"

// ResolveInput is the (certificate, student, enrollment) data the resolver
// computes field values from. Enrollment-derived fields may be left zero when
// no enrollment exists, the keys then resolve to an empty string.
type ResolveInput struct {
	StudentName       string
	StudentEmail      string
	CourseName        string
	ClassName         string
	CertificateNumber string
	IssueDate         time.Time
	CompletionDate    time.Time
}

// ResolveFields maps every known field key to a concrete string. Overrides
// take precedence over computed values for the same key. The result always
// contains every key in FieldKeys.
func ResolveFields(mode ResolveMode, in ResolveInput, overrides map[FieldKey]string) map[FieldKey]string {
	number := in.CertificateNumber
	if mode == ModePreview && number == "" {
		number = fmt.Sprintf("CERT-%d-%06d", in.IssueDate.Year(), 0)
	}

	completion := ""
	if !in.CompletionDate.IsZero() {
		completion = in.CompletionDate.Format(longDateLayout)
	}

	values := map[FieldKey]string{
		FieldStudentName:       in.StudentName,
		FieldStudentEmail:      in.StudentEmail,
		FieldCourseName:        in.CourseName,
		FieldClassName:         in.ClassName,
		FieldCertificateNumber: number,
		FieldIssueDate:         in.IssueDate.Format(longDateLayout),
		FieldCompletionDate:    completion,
	}

	for key, val := range overrides {
		values[key] = val
	}

	return values
}
