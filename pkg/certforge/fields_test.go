package certforge

import (
	"testing"
	"time"
)

func TestResolveFields(t *testing.T) {
	issueDate := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)

	in := ResolveInput{
		StudentName:       "Dara Chan",
		StudentEmail:      "dara@example.com",
		CourseName:        "Intro to Go",
		CertificateNumber: "CERT-2025-000042",
		IssueDate:         issueDate,
	}

	t.Run("Issuance mode uses the real number", func(t *testing.T) {
		values := ResolveFields(ModeIssuance, in, nil)

		if values[FieldCertificateNumber] != "CERT-2025-000042" {
			t.Errorf("expected real number, got %q", values[FieldCertificateNumber])
		}
		if values[FieldIssueDate] != "March 3, 2025" {
			t.Errorf("expected long date, got %q", values[FieldIssueDate])
		}
		if values[FieldStudentName] != "Dara Chan" {
			t.Errorf("expected student name, got %q", values[FieldStudentName])
		}
	})

	t.Run("Preview mode fabricates a sample number", func(t *testing.T) {
		previewIn := in
		previewIn.CertificateNumber = ""

		values := ResolveFields(ModePreview, previewIn, nil)
		if values[FieldCertificateNumber] != "CERT-2025-000000" {
			t.Errorf("expected sample number, got %q", values[FieldCertificateNumber])
		}
	})

	t.Run("Overrides win over computed values", func(t *testing.T) {
		values := ResolveFields(ModeIssuance, in, map[FieldKey]string{
			FieldCourseName: "Advanced Go",
		})
		if values[FieldCourseName] != "Advanced Go" {
			t.Errorf("expected override, got %q", values[FieldCourseName])
		}
	})

	t.Run("Missing enrollment data resolves to empty strings", func(t *testing.T) {
		bare := ResolveInput{StudentName: "Dara Chan", IssueDate: issueDate}

		values := ResolveFields(ModeIssuance, bare, nil)
		if values[FieldCourseName] != "" || values[FieldClassName] != "" {
			t.Errorf("expected empty course/class, got %q / %q", values[FieldCourseName], values[FieldClassName])
		}
		if values[FieldCompletionDate] != "" {
			t.Errorf("expected empty completion date, got %q", values[FieldCompletionDate])
		}
	})

	t.Run("Every known key is present", func(t *testing.T) {
		values := ResolveFields(ModeIssuance, in, nil)
		for _, key := range FieldKeys() {
			if _, ok := values[key]; !ok {
				t.Errorf("missing key %s in resolved values", key)
			}
		}
	})
}
