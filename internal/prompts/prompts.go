package prompts

import (
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/store"
)

// Manager exposes the built-in preset prompts alongside the user-authored
// ones kept in the store.
type Manager struct {
	store *store.Store
}

func NewManager(st *store.Store) *Manager {
	return &Manager{store: st}
}

// Presets returns the fixed starting points offered for each document
// type. They are not persisted; editing one saves a copy as a custom
// prompt.
func (m *Manager) Presets() []models.CustomPrompt {
	return []models.CustomPrompt{
		{ID: "preset-referral", Name: "紹介状", Prompt: "紹介状の主要項目を抽出し、箇条書きで整形してください。"},
		{ID: "preset-medication", Name: "お薬手帳", Prompt: "薬剤名・用量・用法・期間を整形して一覧化してください。"},
		{ID: "preset-general", Name: "一般テキスト", Prompt: "本文を段落として整形してください。"},
	}
}

// Custom returns the user-authored prompts, empty when none are stored.
func (m *Manager) Custom() []models.CustomPrompt {
	prompts, err := m.store.LoadCustomPrompts()
	if err != nil {
		return []models.CustomPrompt{}
	}
	return prompts
}

// Save upserts a custom prompt by ID.
func (m *Manager) Save(prompt models.CustomPrompt) error {
	return m.store.SaveCustomPrompt(prompt)
}

// Delete removes a custom prompt by ID. Presets cannot be deleted; they
// are not stored.
func (m *Manager) Delete(id string) error {
	return m.store.DeleteCustomPrompt(id)
}
