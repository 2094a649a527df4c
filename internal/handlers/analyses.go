package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/koereq/docpipeline/internal/analysis"
	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/processor"
	"github.com/koereq/docpipeline/internal/utils"
)

// AnalysisHandler accepts captured images and runs the analysis pipeline
// synchronously, returning the structured text together with the stage
// history of the run.
type AnalysisHandler struct {
	processor *processor.DocumentProcessor
	auditLog  *audit.Logger
	logger    *utils.Logger
	maxUpload int64
}

func NewAnalysisHandler(proc *processor.DocumentProcessor, auditLog *audit.Logger, logger *utils.Logger, maxUpload int64) *AnalysisHandler {
	return &AnalysisHandler{
		processor: proc,
		auditLog:  auditLog,
		logger:    logger,
		maxUpload: maxUpload,
	}
}

func (h *AnalysisHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, appErr := h.parseRequest(w, r)
	if appErr != nil {
		respondError(w, h.logger, appErr)
		return
	}

	h.auditLog.Log(audit.EventCapture, fmt.Sprintf("%d images", len(req.Images)))

	var stages []string
	var ocrText string
	session := analysis.NewSession(h.processor, h.auditLog, func(snap analysis.Snapshot) {
		stages = append(stages, string(snap.Stage))
		if snap.Stage == analysis.StageLLMRunning {
			ocrText = snap.Text
		}
	})

	snap := session.Start(r.Context(), req.Images, req.DocumentType, req.CustomPrompt)

	resp := models.AnalyzeResponse{
		OCRText: ocrText,
		Stages:  stages,
	}

	if snap.Stage == analysis.StageFailed {
		resp.Failure = snap.Failure
		h.logger.Error("Analysis failed", "failure", snap.Failure)
		respondJSON(w, h.logger, http.StatusBadGateway, resp)
		return
	}

	resp.StructuredText = snap.Text
	h.logger.Info("Analysis completed",
		"images", len(req.Images),
		"document_type", req.DocumentType,
		"text_length", len(snap.Text))

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func (h *AnalysisHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*models.AnalyzeRequest, *utils.AppError) {
	if r.ContentLength > h.maxUpload {
		return nil, utils.NewBadRequestError("Upload exceeds size limit")
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)

	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		return nil, utils.NewBadRequestError("Invalid form data")
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["images"]) == 0 {
		return nil, utils.NewBadRequestError("No images provided")
	}

	var images [][]byte
	for _, header := range r.MultipartForm.File["images"] {
		file, err := header.Open()
		if err != nil {
			return nil, utils.NewInternalError("Failed to read image")
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, utils.NewInternalError("Failed to read image")
		}
		if len(data) == 0 {
			return nil, utils.NewBadRequestError("Uploaded image is empty")
		}
		images = append(images, data)
	}

	docType := models.DocumentType(r.FormValue("documentType"))
	if docType == "" {
		docType = models.DocTypeGeneralText
	}
	if !docType.Valid() {
		return nil, utils.NewBadRequestError("Unknown document type")
	}

	var customPrompt *string
	if v := r.FormValue("customPrompt"); v != "" {
		customPrompt = &v
	}

	return &models.AnalyzeRequest{
		Images:       images,
		DocumentType: docType,
		CustomPrompt: customPrompt,
	}, nil
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	var status int
	var message string

	switch e := err.(type) {
	case *utils.AppError:
		status = e.StatusCode
		message = e.Message
	default:
		status = http.StatusInternalServerError
		message = "Internal server error"
	}

	logger.Error("Request error", "status", status, "error", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
