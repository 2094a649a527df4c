package processor

import (
	"context"
	"strings"

	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/services"
	"github.com/koereq/docpipeline/internal/utils"
)

// DocumentProcessor chains the three remote capabilities into one
// upload → OCR → structure pipeline. It holds no state between calls;
// concurrent Process invocations are independent.
type DocumentProcessor struct {
	storage      services.ImageStorage
	intelligence services.DocumentIntelligence
	structurer   services.TextStructurer
	logger       *utils.Logger
}

func New(set services.Set, logger *utils.Logger) *DocumentProcessor {
	return &DocumentProcessor{
		storage:      set.Storage,
		intelligence: set.Intelligence,
		structurer:   set.Structurer,
		logger:       logger,
	}
}

// PerformOCR uploads the images and runs OCR over them, returning the text
// blocks joined with newlines in document order. Any storage error stops
// the sequence before OCR is attempted.
func (p *DocumentProcessor) PerformOCR(ctx context.Context, images [][]byte) (string, error) {
	urls, err := p.storage.Upload(ctx, images)
	if err != nil {
		return "", err
	}
	p.logger.Debug("Images uploaded", "count", len(urls))

	ocr, err := p.intelligence.Analyze(ctx, urls)
	if err != nil {
		return "", err
	}

	return strings.Join(ocr.TextBlocks, "\n"), nil
}

// ProcessLLM structures raw OCR text for the given document type.
func (p *DocumentProcessor) ProcessLLM(ctx context.Context, ocrText string, docType models.DocumentType, customPrompt *string) (string, error) {
	return p.structurer.Process(ctx, ocrText, docType, customPrompt)
}

// Process runs the full pipeline. Each step short-circuits: OCR is never
// attempted after a failed upload, structuring never after failed OCR.
func (p *DocumentProcessor) Process(ctx context.Context, images [][]byte, docType models.DocumentType, customPrompt *string) (string, error) {
	ocrText, err := p.PerformOCR(ctx, images)
	if err != nil {
		return "", err
	}
	return p.ProcessLLM(ctx, ocrText, docType, customPrompt)
}
