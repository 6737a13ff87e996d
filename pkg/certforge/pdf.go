package certforge

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Stamp an image under the rendered page so the background sits behind every
// element. pdfcpu positions from the top-left anchor, y is inverted.
func ApplyBackgroundImageToPdf(inFile, outFile, imageFile string) error {
	ext := filepath.Ext(imageFile)
	description := "pos: tl, off: 0 0, scale: 1 abs, rotation: 0"

	switch ext {
	case ".png", ".jpg", ".jpeg":
		return api.AddImageWatermarksFile(inFile, outFile, nil, false, imageFile, description, nil)
	case ".pdf":
		return api.AddPDFWatermarksFile(inFile, outFile, nil, false, imageFile, description, nil)
	default:
		return fmt.Errorf("unsupported background file type: %s", ext)
	}
}

// Apply qr code to the bottom right corner of a PDF file
func EmbedQRCodeToPdf(inFile, outFile, qrCodePath string) error {
	description := "pos: br, off: 0 0, scale: 1 abs, rotation: 0"
	err := api.AddImageWatermarksFile(inFile, outFile, nil, true, qrCodePath, description, nil)
	if err != nil {
		return fmt.Errorf("failed to embed QR code in PDF: %w", err)
	}
	return nil
}

// ArtifactRenderer produces the durable fixed-page PDF for an issuance. The
// preview and the artifact consume the same layout tree, only the output
// adapter differs.
type ArtifactRenderer struct {
	cfg     *Config
	painter *Painter
}

func NewArtifactRenderer(cfg *Config) (*ArtifactRenderer, error) {
	painter, err := NewPainter(cfg)
	if err != nil {
		return nil, err
	}

	return &ArtifactRenderer{cfg: cfg, painter: painter}, nil
}

type ArtifactOptions struct {
	// Local path of the template's background image, empty when none.
	BackgroundImagePath string
	// Verification URL encoded into a QR stamped on the page, empty disables
	// the QR.
	QRContent string
}

// RenderArtifact renders the tree to a PDF file under the output directory
// and returns its path. The caller owns the file afterwards.
func (ar *ArtifactRenderer) RenderArtifact(tree *LayoutTree, name string, opts ArtifactOptions) (string, error) {
	if err := os.MkdirAll(ar.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	outFile := filepath.Join(ar.cfg.OutputDir, name)
	if err := ar.painter.WriteFile(tree, outFile); err != nil {
		return "", err
	}

	if opts.BackgroundImagePath != "" {
		if err := ApplyBackgroundImageToPdf(outFile, outFile, opts.BackgroundImagePath); err != nil {
			return "", err
		}
	}

	if opts.QRContent != "" {
		tmpQr, err := os.CreateTemp(ar.cfg.TmpDir, "certforge_qr_*.png")
		if err != nil {
			return "", err
		}
		defer os.Remove(tmpQr.Name())

		if err := GenerateQRCode(opts.QRContent, tmpQr.Name(), 50); err != nil {
			return "", err
		}

		if err := EmbedQRCodeToPdf(outFile, outFile, tmpQr.Name()); err != nil {
			return "", err
		}
	}

	return outFile, nil
}

// RenderPreview writes the interactive SVG preview for the template editor.
func (ar *ArtifactRenderer) RenderPreview(tree *LayoutTree, name string) (string, error) {
	if err := os.MkdirAll(ar.cfg.TmpDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create tmp directory: %w", err)
	}

	outFile := filepath.Join(ar.cfg.TmpDir, name)
	if err := ar.painter.WriteFile(tree, outFile); err != nil {
		return "", err
	}

	return outFile, nil
}
