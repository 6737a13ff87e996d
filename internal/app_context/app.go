package appcontext

import (
	"github.com/minio/minio-go/v7"
	"github.com/openlearn/certforge/internal/config"
	"github.com/openlearn/certforge/internal/mailer"
	"github.com/openlearn/certforge/internal/repository"
	"go.uber.org/zap"
)

// Application contains core dependencies for the app.
type Application struct {
	// Config holds application settings provided from .env file.
	Config *config.Config

	// Logger lol....
	Logger *zap.SugaredLogger

	// Repository provides access to data storage operations.
	Repository *repository.Repository

	// Mailer handles email-sending functions.
	Mailer mailer.Client

	S3 *minio.Client
}
