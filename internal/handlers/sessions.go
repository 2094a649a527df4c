package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/store"
	"github.com/koereq/docpipeline/internal/utils"
)

// SessionHandler exposes CRUD over persisted session records.
type SessionHandler struct {
	store    *store.Store
	auditLog *audit.Logger
	logger   *utils.Logger
}

func NewSessionHandler(st *store.Store, auditLog *audit.Logger, logger *utils.Logger) *SessionHandler {
	return &SessionHandler{
		store:    st,
		auditLog: auditLog,
		logger:   logger,
	}
}

func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.LoadSessions()
	if err != nil {
		h.logger.Error("Failed to load sessions", "error", err)
		respondError(w, h.logger, utils.NewInternalError("Failed to load sessions"))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, sessions)
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.store.GetSession(id)
	if err != nil {
		h.logger.Error("Failed to read session", "error", err, "id", id)
		respondError(w, h.logger, utils.NewInternalError("Failed to read session"))
		return
	}
	if rec == nil {
		respondError(w, h.logger, utils.NewNotFoundError("Session not found"))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, rec)
}

func (h *SessionHandler) SaveSession(w http.ResponseWriter, r *http.Request) {
	var rec models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid session record"))
		return
	}

	if rec.ID == "" {
		rec.ID = utils.GenerateID()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if rec.DocumentType == "" {
		rec.DocumentType = models.DocTypeGeneralText
	}
	if !rec.DocumentType.Valid() {
		respondError(w, h.logger, utils.NewBadRequestError("Unknown document type"))
		return
	}

	if err := h.store.SaveSession(&rec); err != nil {
		h.logger.Error("Failed to save session", "error", err, "id", rec.ID)
		respondError(w, h.logger, utils.NewInternalError("Failed to save session"))
		return
	}

	h.auditLog.Log(audit.EventSessionSaved, rec.ID)
	h.logger.Info("Session saved", "id", rec.ID, "document_type", rec.DocumentType)

	respondJSON(w, h.logger, http.StatusCreated, models.SaveSessionResponse{
		ID:        rec.ID,
		CreatedAt: rec.CreatedAt,
		Message:   "Session saved",
	})
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.store.DeleteSession(id); err != nil {
		h.logger.Error("Failed to delete session", "error", err, "id", id)
		respondError(w, h.logger, utils.NewInternalError("Failed to delete session"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkQRExported records that the session's edited text was exported as a
// QR code.
func (h *SessionHandler) MarkQRExported(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	rec, err := h.store.GetSession(id)
	if err != nil {
		h.logger.Error("Failed to read session", "error", err, "id", id)
		respondError(w, h.logger, utils.NewInternalError("Failed to read session"))
		return
	}
	if rec == nil {
		respondError(w, h.logger, utils.NewNotFoundError("Session not found"))
		return
	}

	rec.QRCodeGenerated = true
	if err := h.store.SaveSession(rec); err != nil {
		h.logger.Error("Failed to update session", "error", err, "id", id)
		respondError(w, h.logger, utils.NewInternalError("Failed to update session"))
		return
	}

	respondJSON(w, h.logger, http.StatusOK, rec)
}
