package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/openlearn/certforge/internal/model"
	"github.com/openlearn/certforge/internal/repository"
	"github.com/openlearn/certforge/internal/util"
	"github.com/openlearn/certforge/pkg/certforge"
	"go.uber.org/zap"
)

// PDFArtifactRenderer renders issuance artifacts with the certforge engine
// and persists them to the object store.
type PDFArtifactRenderer struct {
	logger           *zap.SugaredLogger
	cfg              *certforge.Config
	engine           *certforge.ArtifactRenderer
	s3               *minio.Client
	files            *repository.FileRepository
	bucket           string
	verifyURLPattern string
}

func NewPDFArtifactRenderer(logger *zap.SugaredLogger, cfg *certforge.Config, s3 *minio.Client, files *repository.FileRepository, bucket, verifyURLPattern string) (*PDFArtifactRenderer, error) {
	engine, err := certforge.NewArtifactRenderer(cfg)
	if err != nil {
		return nil, err
	}

	return &PDFArtifactRenderer{
		logger:           logger,
		cfg:              cfg,
		engine:           engine,
		s3:               s3,
		files:            files,
		bucket:           bucket,
		verifyURLPattern: verifyURLPattern,
	}, nil
}

func (r *PDFArtifactRenderer) RenderArtifact(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, certificateNumber string) (*model.File, error) {
	tree := certforge.Layout(template, values, 1)

	opts := certforge.ArtifactOptions{}
	if r.verifyURLPattern != "" {
		opts.QRContent = fmt.Sprintf(r.verifyURLPattern, certificateNumber)
	}

	if template.BackgroundImage != "" {
		localBg := filepath.Join(r.cfg.TmpDir, filepath.Base(template.BackgroundImage))
		if err := r.s3.FGetObject(ctx, r.bucket, template.BackgroundImage, localBg, minio.GetObjectOptions{}); err != nil {
			return nil, fmt.Errorf("failed to fetch background image %s: %w", template.BackgroundImage, err)
		}
		defer os.Remove(localBg)
		opts.BackgroundImagePath = localBg
	}

	fileName := fmt.Sprintf("%s.pdf", certificateNumber)
	localPath, err := r.engine.RenderArtifact(tree, fileName, opts)
	if err != nil {
		return nil, err
	}
	defer os.Remove(localPath)

	info, err := util.UploadFileToS3ByPath(localPath, &util.FileUploadOptions{
		DirectoryPath: util.GetIssuedCertificateDirectoryPath(template.ID),
		UniquePrefix:  true,
		Bucket:        r.bucket,
		S3:            r.s3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store artifact %s: %w", fileName, err)
	}

	file := &model.File{
		FileName:       fileName,
		UniqueFileName: info.Key,
		BucketName:     info.Bucket,
		Size:           info.Size,
	}
	if _, err := r.files.Create(ctx, nil, file); err != nil {
		return nil, fmt.Errorf("failed to record artifact file %s: %w", fileName, err)
	}

	return file, nil
}

func (r *PDFArtifactRenderer) DeleteArtifact(ctx context.Context, file *model.File) error {
	if err := file.Delete(ctx, r.s3); err != nil {
		return err
	}

	return r.files.Delete(ctx, nil, file.ID)
}

// RenderPreview renders the interactive SVG preview of a template. zoom
// scales the whole layout uniformly.
func (r *PDFArtifactRenderer) RenderPreview(ctx context.Context, template *certforge.Template, values map[certforge.FieldKey]string, zoom float64) (string, error) {
	tree := certforge.Layout(template, values, zoom)

	name := fmt.Sprintf("preview_%s.svg", template.ID)
	return r.engine.RenderPreview(tree, name)
}
