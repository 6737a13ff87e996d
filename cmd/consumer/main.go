package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/database"
	"github.com/openlearn/certforge/internal/env"
	filestorage "github.com/openlearn/certforge/internal/file_storage"
	"github.com/openlearn/certforge/internal/mailer"
	"github.com/openlearn/certforge/internal/queue"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/internal/service"
	"github.com/openlearn/certforge/internal/util"
)

// this function run before main
func init() {
	env.LoadEnv(".env")
}

func main() {
	cfg := config.GetConfig()
	logger := util.NewLogger(cfg.ENV)

	db, err := database.ConnectReturnGormDB(cfg.DB)
	if err != nil {
		logger.Panic(err)
	}

	sqlDb, err := db.DB()
	if err != nil {
		logger.Panic(err)
	}
	defer sqlDb.Close()
	logger.Info("Database connected \n")

	s3, err := filestorage.NewMinioClient(&cfg.Minio)
	if err != nil {
		logger.Error("Error connecting to minio")
		logger.Panic(err)
	}
	logger.Info("Minio connected \n")

	var mail mailer.Client
	if cfg.Mail.GMAIL_USERNAME != "" {
		mail = mailer.NewGmailMailer(cfg.Mail.GMAIL_USERNAME, cfg.Mail.GMAIL_APP_PASSWORD, logger)
	} else {
		mail = mailer.NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger)
	}

	repo := repository.NewRepository(db, logger, s3)
	svc, err := service.NewServices(logger, &cfg, repo, s3, mail)
	if err != nil {
		logger.Panic(err)
	}

	app := queue.ConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
		S3:         s3,
	}
	mailApp := queue.MailConsumerContext{
		Config:     &cfg,
		Repository: repo,
		Logger:     logger,
		Mailer:     mail,
	}

	rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQ.GetConnectionString())
	if err != nil {
		logger.Panic("Error connecting to RabbitMQ: ", err)
	}
	logger.Info("RabbitMQ connected \n")
	defer func() {
		if err := rabbitMQ.Close(); err != nil {
			logger.Errorf("Failed to close RabbitMQ connection: %v", err)
		}
	}()

	bulkHandler := func(jobPayload queue.BulkIssuePayload, app *queue.ConsumerContext) (bool, error) {
		return bulkIssueJobHandler(context.Background(), jobPayload, app, svc)
	}

	maxWorker := util.DetermineWorkers(0)

	if err := rabbitMQ.ConsumeBulkIssueJob(bulkHandler, maxWorker, &app); err != nil {
		logger.Fatalf("Failed to consume bulk issue job: %v", err)
	}
	logger.Infof("Started consuming bulk issue job")

	if err := rabbitMQ.ConsumeMailJob(context.Background(), mailJobHandler, maxWorker, &mailApp); err != nil {
		logger.Fatalf("Failed to consume mail job: %v", err)
	}
	logger.Infof("Started consuming mail job")

	// Block forever to keep the consumer running
	select {}
}

// Return shouldRequeue, err
func bulkIssueJobHandler(ctx context.Context, jobPayload queue.BulkIssuePayload, app *queue.ConsumerContext, svc *service.Services) (bool, error) {
	var queueWaitDuration string
	createdAtTime, err := time.Parse(time.RFC3339, jobPayload.CreatedAt)
	if err != nil {
		app.Logger.Errorf("Failed to parse created_at time: %v", err)
		queueWaitDuration = "unknown"
	} else {
		queueWaitDuration = time.Since(createdAtTime).String()
	}

	app.Logger.Infof("Bulk issue job for template %s, %d students, waited in queue for %s", jobPayload.TemplateID, len(jobPayload.StudentIDs), queueWaitDuration)

	result := svc.Bulk.BulkIssue(ctx, service.BulkIssueParams{
		CertificateID: jobPayload.TemplateID,
		StudentIDs:    jobPayload.StudentIDs,
		CourseID:      jobPayload.CourseID,
		ClassID:       jobPayload.ClassID,
		Notes:         jobPayload.Notes,
		SkipExisting:  jobPayload.SkipExisting,
		Actor:         jobPayload.Actor,
	})

	app.Logger.Infof("Bulk issue job done for template %s: %d issued, %d skipped, %d errors", jobPayload.TemplateID, result.IssuedCount, result.SkippedCount, len(result.Errors))
	for _, issueErr := range result.Errors {
		app.Logger.Errorf("Bulk issue error for student %s: %s", issueErr.StudentID, issueErr.Message)
	}

	// Per-student errors are already recorded in the result, rerunning the
	// batch would only duplicate the skip noise.
	return false, nil
}

// Return shouldRequeue, err
func mailJobHandler(ctx context.Context, jobPayload queue.MailJobPayload, app *queue.MailConsumerContext) (bool, error) {
	switch jobPayload.TemplateFile {
	case mailer.CERTIFICATE_ISSUED_TEMPLATE, mailer.CERTIFICATE_REVOKED_TEMPLATE:
		var data map[string]any
		if err := json.Unmarshal(jobPayload.Data, &data); err != nil {
			return false, fmt.Errorf("failed to unmarshal mail data: %w", err)
		}

		status, err := app.Mailer.Send(jobPayload.TemplateFile, jobPayload.ToUsername, jobPayload.ToEmail, data)
		if err != nil {
			return true, fmt.Errorf("failed to send email: %w", err)
		}

		if status != http.StatusOK && status != http.StatusAccepted {
			return true, fmt.Errorf("email sending failed with status: %d", status)
		}

		return true, nil
	default:
		return false, fmt.Errorf("unsupported template: %s", jobPayload.TemplateFile)
	}
}
