package constant

type TemplateStatus string

const (
	TemplateStatusDraft    TemplateStatus = "draft"
	TemplateStatusActive   TemplateStatus = "active"
	TemplateStatusArchived TemplateStatus = "archived"
)

type IssuanceStatus string

const (
	IssuanceStatusIssued  IssuanceStatus = "issued"
	IssuanceStatusRevoked IssuanceStatus = "revoked"
)

type AuditAction string

const (
	AuditActionCreated   AuditAction = "created"
	AuditActionUpdated   AuditAction = "updated"
	AuditActionActivated AuditAction = "activated"
	AuditActionArchived  AuditAction = "archived"
	AuditActionIssued    AuditAction = "issued"
	AuditActionRevoked   AuditAction = "revoked"
	AuditActionDeleted   AuditAction = "deleted"
)

type AuditEntity string

const (
	AuditEntityTemplate AuditEntity = "certificate_template"
	AuditEntityIssuance AuditEntity = "certificate_issuance"
)
