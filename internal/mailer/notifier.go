package mailer

import (
	"fmt"

	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/util"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
)

// IssuanceNotifier emails the student when a certificate is issued to them.
// It satisfies the issuance service's Notifier dependency.
type IssuanceNotifier struct {
	logger  *zap.SugaredLogger
	client  Client
	baseURL string
}

func NewIssuanceNotifier(logger *zap.SugaredLogger, client Client, baseURL string) *IssuanceNotifier {
	return &IssuanceNotifier{logger: logger, client: client, baseURL: baseURL}
}

func (n *IssuanceNotifier) NotifyIssued(student *model.Student, issuance *model.CertificateIssuance) error {
	values, err := issuance.FieldSnapshotValues()
	if err != nil {
		return err
	}

	vars := struct {
		AppName           string
		StudentName       string
		CertificateNumber string
		CourseName        string
		DownloadURL       string
		VerifyURL         string
	}{
		AppName:           util.GetAppName(),
		StudentName:       student.FullName,
		CertificateNumber: issuance.CertificateNumber,
		CourseName:        values[certforge.FieldCourseName],
		VerifyURL:         fmt.Sprintf("%s/api/v1/verify/%s", n.baseURL, issuance.CertificateNumber),
	}

	status, err := n.client.Send(CERTIFICATE_ISSUED_TEMPLATE, student.FullName, student.Email, vars)
	if err != nil {
		return fmt.Errorf("failed to send issuance mail (status %d): %w", status, err)
	}
	return nil
}
