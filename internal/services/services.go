package services

import (
	"context"

	"github.com/koereq/docpipeline/internal/config"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/utils"
)

// ImageStorage uploads captured image blobs and returns one URL per image,
// in input order.
type ImageStorage interface {
	Upload(ctx context.Context, images [][]byte) ([]string, error)
}

// DocumentIntelligence runs OCR over previously uploaded images.
type DocumentIntelligence interface {
	Analyze(ctx context.Context, urls []string) (*models.OCRResult, error)
}

// TextStructurer turns raw OCR text into structured text using the
// instruction implied by the document type, or the custom prompt.
type TextStructurer interface {
	Process(ctx context.Context, ocrText string, docType models.DocumentType, customPrompt *string) (string, error)
}

// Set bundles one implementation of each capability.
type Set struct {
	Storage      ImageStorage
	Intelligence DocumentIntelligence
	Structurer   TextStructurer
}

// Select picks implementations once at startup based on available
// configuration. The real functions clients are preferred; an S3 backend
// can stand in for image storage; anything unconfigured falls back to the
// deterministic stubs. Incomplete configuration is never an error here.
func Select(cfg *config.Config, logger *utils.Logger) Set {
	set := Set{
		Storage:      &StorageStub{},
		Intelligence: &DocumentIntelligenceStub{},
		Structurer:   &TextStructurerStub{},
	}

	if cfg.FunctionsConfigured() {
		client := NewFunctionsClient(cfg)
		set.Storage = client
		set.Intelligence = client
		set.Structurer = client
		logger.Info("Using functions backend", "base_url", cfg.FunctionsBaseURL)
		return set
	}

	if cfg.S3Configured() {
		s3, err := NewS3ImageStorage(cfg)
		if err != nil {
			logger.Warn("S3 storage unavailable, using stub", "error", err)
		} else {
			set.Storage = s3
			logger.Info("Using S3 image storage", "endpoint", cfg.S3Endpoint)
		}
	}

	logger.Info("OCR and structuring backends not configured, using stubs")
	return set
}
