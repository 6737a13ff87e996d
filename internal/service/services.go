package service

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/openlearn/certforge/internal/audit"
	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/mailer"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
)

// Services bundles the wired domain services for the api and consumer
// binaries.
type Services struct {
	Clock      Clock
	Renderer   *PDFArtifactRenderer
	Template   *TemplateService
	Issuance   *IssuanceService
	Bulk       *BulkCoordinator
	Assignment *AssignmentService
}

func NewServices(logger *zap.SugaredLogger, cfg *config.Config, repo *repository.Repository, s3 *minio.Client, mail mailer.Client) (*Services, error) {
	renderCfg := certforge.NewDefaultConfig()
	if cfg.App.FontDir != "" {
		renderCfg.FontMetadataPath = cfg.App.FontDir
	}

	verifyURLPattern := fmt.Sprintf("%s/api/v1/verify/%%s", cfg.App.BaseURL)
	renderer, err := NewPDFArtifactRenderer(logger, renderCfg, s3, repo.File, cfg.Minio.Bucket, verifyURLPattern)
	if err != nil {
		return nil, err
	}

	var notifier Notifier
	if cfg.Mail.Enabled() {
		notifier = mailer.NewIssuanceNotifier(logger, mail, cfg.App.BaseURL)
	}

	auditSink := audit.NewSink(repo.AuditLog)
	clock := NewSystemClock()

	issuance := NewIssuanceService(logger, clock, repo.Template, repo.Student, repo.Enrollment, repo.Issuance, repo.Sequence, renderer, auditSink, notifier)

	return &Services{
		Clock:      clock,
		Renderer:   renderer,
		Template:   NewTemplateService(logger, clock, repo.Template, renderer, auditSink),
		Issuance:   issuance,
		Bulk:       NewBulkCoordinator(logger, issuance, repo.Enrollment),
		Assignment: NewAssignmentService(logger, repo.Assignment),
	}, nil
}
