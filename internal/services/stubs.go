package services

import (
	"context"
	"fmt"

	"github.com/koereq/docpipeline/internal/models"
)

// The stubs exercise the full pipeline without a backend. Their output is
// deterministic so the end-to-end path stays testable offline.

type StorageStub struct{}

func (s *StorageStub) Upload(ctx context.Context, images [][]byte) ([]string, error) {
	urls := make([]string, len(images))
	for i := range images {
		urls[i] = fmt.Sprintf("https://example.blob.core.windows.net/tmp/img_%d.jpg", i)
	}
	return urls, nil
}

type DocumentIntelligenceStub struct{}

func (s *DocumentIntelligenceStub) Analyze(ctx context.Context, urls []string) (*models.OCRResult, error) {
	return &models.OCRResult{
		TextBlocks: []string{"サンプルOCRテキスト"},
		Tables:     [][][]string{},
		Checkboxes: []models.CheckboxInfo{},
	}, nil
}

type TextStructurerStub struct{}

func (s *TextStructurerStub) Process(ctx context.Context, ocrText string, docType models.DocumentType, customPrompt *string) (string, error) {
	prompt := ""
	if customPrompt != nil {
		prompt = *customPrompt
	}
	return fmt.Sprintf("[%s]\n%s\n%s", docType, ocrText, prompt), nil
}
