package models

import (
	"time"
)

// DocumentType selects which structuring instruction is applied to OCR
// output. The values are the Japanese labels used on the wire by the
// processText endpoint.
type DocumentType string

const (
	DocTypeReferralLetter     DocumentType = "紹介状"
	DocTypeMedicationNotebook DocumentType = "お薬手帳"
	DocTypeGeneralText        DocumentType = "一般テキスト"
	DocTypeCustom             DocumentType = "オリジナル"
)

// AllDocumentTypes lists every valid document type.
var AllDocumentTypes = []DocumentType{
	DocTypeReferralLetter,
	DocTypeMedicationNotebook,
	DocTypeGeneralText,
	DocTypeCustom,
}

func (d DocumentType) Valid() bool {
	for _, t := range AllDocumentTypes {
		if d == t {
			return true
		}
	}
	return false
}

// SessionRecord is the persisted outcome of one capture-analyze-edit cycle.
// Image blobs are kept in capture order.
type SessionRecord struct {
	ID               string       `json:"id"`
	Images           [][]byte     `json:"images"`
	OriginalText     string       `json:"originalText"`
	EditedText       string       `json:"editedText"`
	DocumentType     DocumentType `json:"documentType"`
	CustomPromptUsed *string      `json:"customPromptUsed,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	QRCodeGenerated  bool         `json:"qrCodeGenerated"`
}

// CustomPrompt is a user-authored instruction overriding the built-in
// structuring prompt for a document type.
type CustomPrompt struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	CreatedAt time.Time `json:"createdAt"`
}

// CheckboxInfo is a single checkbox detection in an analyzed document.
type CheckboxInfo struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// OCRResult is the structured extraction returned by the document
// intelligence endpoint. Tables and checkboxes are modeled for future use;
// only the text blocks feed the structuring step today.
type OCRResult struct {
	TextBlocks []string       `json:"textBlocks"`
	Tables     [][][]string   `json:"tables"`
	Checkboxes []CheckboxInfo `json:"checkboxes"`
}

// AnalyzeRequest is the payload accepted by the analysis endpoint.
type AnalyzeRequest struct {
	Images       [][]byte
	DocumentType DocumentType
	CustomPrompt *string
}

// AnalyzeResponse is returned after one pipeline run.
type AnalyzeResponse struct {
	StructuredText string   `json:"structuredText"`
	OCRText        string   `json:"ocrText"`
	Stages         []string `json:"stages"`
	Failure        string   `json:"failure,omitempty"`
}

// SaveSessionResponse acknowledges a persisted session record.
type SaveSessionResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
}
