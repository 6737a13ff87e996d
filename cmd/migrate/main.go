package main

import (
	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/database"
	"github.com/openlearn/certforge/internal/env"
	"github.com/openlearn/certforge/internal/model"
	"go.uber.org/zap"
)

func init() {
	env.LoadEnv(".env")
}

func main() {
	logger := zap.Must(zap.NewDevelopment()).Sugar()
	defer logger.Sync()
	cfg := config.GetConfig()

	logger.Infof("Database configuration: %+v", cfg.DB)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	db.Exec(`CREATE EXTENSION IF NOT EXISTS citext`)

	migrateErr := db.AutoMigrate(
		&model.File{},
		&model.Student{},
		&model.Course{},
		&model.Class{},
		&model.Enrollment{},
		&model.CertificateTemplate{},
		&model.CertificateAssignment{},
		&model.CertificateSequence{},
		&model.CertificateIssuance{},
		&model.AuditLog{},
	)
	if migrateErr != nil {
		logger.Panic(migrateErr)
	}

	// Duplicate checks in the service layer are advisory, this index is what
	// guarantees at most one live certificate per (template, student,
	// enrollment) under concurrency. Revoked rows fall outside the predicate
	// so re-issuance stays possible.
	indexErr := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uidx_live_issuance
		ON certificate_issuances (certificate_template_id, student_id, COALESCE(enrollment_id, ''))
		WHERE status = 'issued'
	`).Error
	if indexErr != nil {
		logger.Panic(indexErr)
	}

	logger.Info("Migration complete")
}
