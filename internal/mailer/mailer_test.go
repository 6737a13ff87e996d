package mailer

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
)

func TestMailTemplates(t *testing.T) {
	vars := struct {
		AppName           string
		StudentName       string
		CertificateNumber string
		CourseName        string
		DownloadURL       string
		VerifyURL         string
		Reason            string
	}{
		AppName:           "CertForge",
		StudentName:       "Sokha Meas",
		CertificateNumber: "CERT-2026-000001",
		CourseName:        "Intro to Go",
		VerifyURL:         "http://localhost:8080/api/v1/verify/CERT-2026-000001",
		Reason:            "issued in error",
	}

	tests := []struct {
		name         string
		templateFile MailTemplateFile
		wantInBody   string
	}{
		{"issued", CERTIFICATE_ISSUED_TEMPLATE, "has been issued"},
		{"revoked", CERTIFICATE_REVOKED_TEMPLATE, "has been revoked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := template.ParseFS(FS, "templates/"+string(tt.templateFile))
			if err != nil {
				t.Fatalf("failed to parse template %s: %v", tt.templateFile, err)
			}

			subject := new(bytes.Buffer)
			if err := tmpl.ExecuteTemplate(subject, "subject", vars); err != nil {
				t.Fatalf("failed to execute subject: %v", err)
			}
			if !strings.Contains(subject.String(), vars.CertificateNumber) {
				t.Errorf("subject %q should contain the certificate number", subject.String())
			}

			body := new(bytes.Buffer)
			if err := tmpl.ExecuteTemplate(body, "body", vars); err != nil {
				t.Fatalf("failed to execute body: %v", err)
			}
			if !strings.Contains(body.String(), vars.StudentName) {
				t.Errorf("body should greet the student by name")
			}
			if !strings.Contains(body.String(), tt.wantInBody) {
				t.Errorf("body should contain %q", tt.wantInBody)
			}
		})
	}
}
