package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/prompts"
	"github.com/koereq/docpipeline/internal/utils"
)

// PromptHandler exposes the preset and user-authored prompt templates.
type PromptHandler struct {
	manager *prompts.Manager
	logger  *utils.Logger
}

func NewPromptHandler(manager *prompts.Manager, logger *utils.Logger) *PromptHandler {
	return &PromptHandler{manager: manager, logger: logger}
}

type promptListResponse struct {
	Presets []models.CustomPrompt `json:"presets"`
	Custom  []models.CustomPrompt `json:"custom"`
}

func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, promptListResponse{
		Presets: h.manager.Presets(),
		Custom:  h.manager.Custom(),
	})
}

func (h *PromptHandler) SavePrompt(w http.ResponseWriter, r *http.Request) {
	var prompt models.CustomPrompt
	if err := json.NewDecoder(r.Body).Decode(&prompt); err != nil {
		respondError(w, h.logger, utils.NewBadRequestError("Invalid prompt"))
		return
	}

	if prompt.Name == "" || prompt.Prompt == "" {
		respondError(w, h.logger, utils.NewBadRequestError("Prompt name and body are required"))
		return
	}
	if prompt.ID == "" {
		prompt.ID = utils.GenerateID()
	}
	if prompt.CreatedAt.IsZero() {
		prompt.CreatedAt = time.Now().UTC()
	}

	if err := h.manager.Save(prompt); err != nil {
		h.logger.Error("Failed to save prompt", "error", err, "id", prompt.ID)
		respondError(w, h.logger, utils.NewInternalError("Failed to save prompt"))
		return
	}

	h.logger.Info("Custom prompt saved", "id", prompt.ID, "name", prompt.Name)
	respondJSON(w, h.logger, http.StatusCreated, prompt)
}

func (h *PromptHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.manager.Delete(id); err != nil {
		h.logger.Error("Failed to delete prompt", "error", err, "id", id)
		respondError(w, h.logger, utils.NewInternalError("Failed to delete prompt"))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
