package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/processor"
	"github.com/koereq/docpipeline/internal/services"
	"github.com/koereq/docpipeline/internal/utils"
)

type scriptedStorage struct {
	err error
}

func (s *scriptedStorage) Upload(ctx context.Context, images [][]byte) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []string{"u"}, nil
}

type scriptedIntelligence struct {
	blocks []string
}

func (s *scriptedIntelligence) Analyze(ctx context.Context, urls []string) (*models.OCRResult, error) {
	return &models.OCRResult{TextBlocks: s.blocks}, nil
}

type scriptedStructurer struct {
	out string
	err error
}

func (s *scriptedStructurer) Process(ctx context.Context, ocrText string, docType models.DocumentType, customPrompt *string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.out, nil
}

func newTestSession(t *testing.T, set services.Set, observer Observer) *Session {
	t.Helper()
	logger := utils.NewLogger("error")
	auditLog := audit.New(t.TempDir())
	t.Cleanup(auditLog.Close)
	return NewSession(processor.New(set, logger), auditLog, observer)
}

func TestSuccessfulRunVisitsStagesInOrder(t *testing.T) {
	var stages []Stage
	var texts []string
	set := services.Set{
		Storage:      &scriptedStorage{},
		Intelligence: &scriptedIntelligence{blocks: []string{"raw"}},
		Structurer:   &scriptedStructurer{out: "structured"},
	}
	session := newTestSession(t, set, func(snap Snapshot) {
		stages = append(stages, snap.Stage)
		texts = append(texts, snap.Text)
	})

	snap := session.Start(context.Background(), [][]byte{[]byte("img")}, models.DocTypeGeneralText, nil)

	wantStages := []Stage{StageOCRRunning, StageLLMRunning, StageCompleted}
	if len(stages) != len(wantStages) {
		t.Fatalf("observed stages %v, want %v", stages, wantStages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] {
			t.Errorf("stages[%d] = %s, want %s", i, stages[i], wantStages[i])
		}
	}

	// The raw OCR text is published before structuring overwrites it
	if texts[1] != "raw" {
		t.Errorf("text at llmRunning = %q, want raw OCR output", texts[1])
	}
	if snap.Stage != StageCompleted || snap.Text != "structured" {
		t.Errorf("final snapshot = %+v", snap)
	}
}

func TestOCRFailureNeverReachesLLMRunning(t *testing.T) {
	var stages []Stage
	set := services.Set{
		Storage:      &scriptedStorage{err: errors.New("storage down")},
		Intelligence: &scriptedIntelligence{},
		Structurer:   &scriptedStructurer{},
	}
	session := newTestSession(t, set, func(snap Snapshot) {
		stages = append(stages, snap.Stage)
	})

	snap := session.Start(context.Background(), [][]byte{[]byte("img")}, models.DocTypeGeneralText, nil)

	if snap.Stage != StageFailed {
		t.Fatalf("final stage = %s, want failed", snap.Stage)
	}
	if snap.Failure == "" {
		t.Error("failure reason is empty")
	}
	for _, st := range stages {
		if st == StageLLMRunning {
			t.Error("llmRunning reached after OCR failure")
		}
	}
}

func TestLLMFailureKeepsOCRText(t *testing.T) {
	set := services.Set{
		Storage:      &scriptedStorage{},
		Intelligence: &scriptedIntelligence{blocks: []string{"partial"}},
		Structurer:   &scriptedStructurer{err: errors.New("llm down")},
	}
	session := newTestSession(t, set, nil)

	snap := session.Start(context.Background(), [][]byte{[]byte("img")}, models.DocTypeGeneralText, nil)

	if snap.Stage != StageFailed {
		t.Fatalf("final stage = %s, want failed", snap.Stage)
	}
	if snap.Text != "partial" {
		t.Errorf("text after LLM failure = %q, want the OCR output", snap.Text)
	}
}

func TestRestartRepeatsFullSequence(t *testing.T) {
	var stages []Stage
	set := services.Set{
		Storage:      &scriptedStorage{},
		Intelligence: &scriptedIntelligence{blocks: []string{"raw"}},
		Structurer:   &scriptedStructurer{out: "structured"},
	}
	session := newTestSession(t, set, func(snap Snapshot) {
		stages = append(stages, snap.Stage)
	})

	session.Start(context.Background(), [][]byte{[]byte("img")}, models.DocTypeGeneralText, nil)
	session.Start(context.Background(), [][]byte{[]byte("img")}, models.DocTypeGeneralText, nil)

	// Both runs go through the full ocrRunning → llmRunning → completed path
	want := []Stage{StageOCRRunning, StageLLMRunning, StageCompleted, StageOCRRunning, StageLLMRunning, StageCompleted}
	if len(stages) != len(want) {
		t.Fatalf("observed %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %s, want %s", i, stages[i], want[i])
		}
	}
}
