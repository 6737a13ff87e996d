package mailer

import "embed"

type MailTemplateFile string

const (
	MAX_RETRY = 3

	CERTIFICATE_ISSUED_TEMPLATE  MailTemplateFile = "certificate_issued.tmpl"
	CERTIFICATE_REVOKED_TEMPLATE MailTemplateFile = "certificate_revoked.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile MailTemplateFile, toUsername, toEmail string, data any) (int, error)
}
