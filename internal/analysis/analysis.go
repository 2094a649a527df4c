package analysis

import (
	"context"
	"sync"

	"github.com/koereq/docpipeline/internal/audit"
	"github.com/koereq/docpipeline/internal/models"
	"github.com/koereq/docpipeline/internal/processor"
)

// Stage is the pipeline state observable during one analysis run.
type Stage string

const (
	StageIdle       Stage = "idle"
	StageOCRRunning Stage = "ocrRunning"
	StageLLMRunning Stage = "llmRunning"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// Snapshot is the published state handed to the observer on every
// transition. Text carries the raw OCR output while structuring is still
// running, then the structured output once it completes.
type Snapshot struct {
	Stage   Stage
	Text    string
	Failure string
}

// Observer receives a snapshot after each stage transition.
type Observer func(Snapshot)

// Session drives one analysis run through the processor and exposes its
// progress as a small state machine. It does not retry and does not keep
// partial OCR output across runs: restarting repeats the full sequence.
type Session struct {
	processor *processor.DocumentProcessor
	auditLog  *audit.Logger
	observer  Observer

	mu      sync.Mutex
	stage   Stage
	text    string
	failure string
}

func NewSession(proc *processor.DocumentProcessor, auditLog *audit.Logger, observer Observer) *Session {
	return &Session{
		processor: proc,
		auditLog:  auditLog,
		observer:  observer,
		stage:     StageIdle,
	}
}

// Snapshot returns the current published state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Stage: s.stage, Text: s.text, Failure: s.failure}
}

func (s *Session) transition(stage Stage, text, failure string) {
	s.mu.Lock()
	s.stage = stage
	s.text = text
	s.failure = failure
	snap := Snapshot{Stage: stage, Text: text, Failure: failure}
	s.mu.Unlock()

	if s.observer != nil {
		s.observer(snap)
	}
}

// Start runs the pipeline to completion. Calling it again from any state
// resets to ocrRunning and re-runs both steps from scratch. It blocks
// until the run completes or fails; callers wanting background execution
// run it in their own goroutine.
func (s *Session) Start(ctx context.Context, images [][]byte, docType models.DocumentType, customPrompt *string) Snapshot {
	s.transition(StageOCRRunning, "", "")
	s.auditLog.Log(audit.EventAnalyzeStart, "")

	ocrText, err := s.processor.PerformOCR(ctx, images)
	if err != nil {
		s.transition(StageFailed, "", err.Error())
		s.auditLog.Log(audit.EventAnalyzeError, err.Error())
		return s.Snapshot()
	}

	// Show the raw OCR text while structuring is still in flight.
	s.transition(StageLLMRunning, ocrText, "")

	structured, err := s.processor.ProcessLLM(ctx, ocrText, docType, customPrompt)
	if err != nil {
		s.transition(StageFailed, ocrText, err.Error())
		s.auditLog.Log(audit.EventAnalyzeError, err.Error())
		return s.Snapshot()
	}

	s.transition(StageCompleted, structured, "")
	s.auditLog.Log(audit.EventAnalyzeSuccess, "")
	return s.Snapshot()
}
