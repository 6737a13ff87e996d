package certforge

import (
	"fmt"
	"os"
)

type Config struct {
	// A path to json where it stores font name and path to the font file
	FontMetadataPath string
	// Directory where the output files are stored after rendering
	OutputDir string
	// Directory where temporary files live during rendering, deleted once the
	// artifact is finalized
	TmpDir string
}

func NewDefaultConfig() *Config {
	cfg := Config{
		FontMetadataPath: "font_metadata.json",
		OutputDir:        fmt.Sprintf("%s/certforge/render/output", os.TempDir()),
		TmpDir:           fmt.Sprintf("%s/certforge/render/tmp", os.TempDir()),
	}

	// Create the directories if they do not exist
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		fmt.Printf("Error creating output directory: %v\n", err)
	}
	if err := os.MkdirAll(cfg.TmpDir, 0755); err != nil {
		fmt.Printf("Error creating tmp directory: %v\n", err)
	}

	return &cfg
}
