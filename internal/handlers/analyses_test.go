package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/processor"
	"github.com/koereq/docpipeline/internal/services"
	"github.com/koereq/docpipeline/internal/utils"
)

func newAnalysisHandler(t *testing.T) *AnalysisHandler {
	t.Helper()
	logger := utils.NewLogger("error")
	auditLog := audit.New(t.TempDir())
	t.Cleanup(auditLog.Close)

	set := services.Set{
		Storage:      &services.StorageStub{},
		Intelligence: &services.DocumentIntelligenceStub{},
		Structurer:   &services.TextStructurerStub{},
	}
	return NewAnalysisHandler(processor.New(set, logger), auditLog, logger, 20<<20)
}

func analyzeRequest(t *testing.T, docType string, customPrompt string, images ...[]byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, img := range images {
		fw, err := mw.CreateFormFile("images", "capture.jpg")
		if err != nil {
			t.Fatalf("CreateFormFile() failed: %v", err)
		}
		fw.Write(img)
	}
	if docType != "" {
		mw.WriteField("documentType", docType)
	}
	if customPrompt != "" {
		mw.WriteField("customPrompt", customPrompt)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyses", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAnalyzeWithStubs(t *testing.T) {
	h := newAnalysisHandler(t)

	w := httptest.NewRecorder()
	h.Analyze(w, analyzeRequest(t, string(models.DocTypeReferralLetter), "補足", []byte("jpeg bytes")))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var resp models.AnalyzeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}

	if resp.StructuredText != "[紹介状]\nサンプルOCRテキスト\n補足" {
		t.Errorf("structuredText = %q", resp.StructuredText)
	}
	if resp.OCRText != "サンプルOCRテキスト" {
		t.Errorf("ocrText = %q", resp.OCRText)
	}
	want := []string{"ocrRunning", "llmRunning", "completed"}
	if len(resp.Stages) != len(want) {
		t.Fatalf("stages = %v, want %v", resp.Stages, want)
	}
	for i := range want {
		if resp.Stages[i] != want[i] {
			t.Errorf("stages[%d] = %s, want %s", i, resp.Stages[i], want[i])
		}
	}
}

func TestAnalyzeWithoutImagesIs400(t *testing.T) {
	h := newAnalysisHandler(t)

	w := httptest.NewRecorder()
	h.Analyze(w, analyzeRequest(t, string(models.DocTypeGeneralText), ""))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeRejectsUnknownDocumentType(t *testing.T) {
	h := newAnalysisHandler(t)

	w := httptest.NewRecorder()
	h.Analyze(w, analyzeRequest(t, "invoice", "", []byte("img")))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
