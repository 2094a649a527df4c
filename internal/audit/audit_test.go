package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLogAppendsJSONLines(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir)

	logger.Log(EventAppLaunch, "")
	logger.Log(EventAnalyzeStart, "")
	logger.Log(EventAnalyzeError, "request failed")
	logger.Close()

	f, err := os.Open(filepath.Join(dir, "audit_log.jsonl"))
	if err != nil {
		t.Fatalf("failed to open audit log: %v", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("line is not valid JSON: %q: %v", scanner.Text(), err)
		}
		records = append(records, rec)
	}

	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	if records[0].Event != EventAppLaunch {
		t.Errorf("records[0].Event = %s", records[0].Event)
	}
	if records[2].Event != EventAnalyzeError || records[2].Detail != "request failed" {
		t.Errorf("records[2] = %+v", records[2])
	}
	for i, rec := range records {
		if rec.Timestamp.IsZero() {
			t.Errorf("records[%d] has zero timestamp", i)
		}
	}
}

func TestLogAfterCloseIsNoOp(t *testing.T) {
	dir := t.TempDir()
	logger := New(dir)

	logger.Log(EventAppLaunch, "")
	logger.Close()

	// Neither of these may panic; the late record is dropped
	logger.Log(EventSessionSaved, "late")
	logger.Close()

	data, err := os.ReadFile(filepath.Join(dir, "audit_log.jsonl"))
	if err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	var rec Record
	if err := json.Unmarshal(data[:len(data)-1], &rec); err != nil {
		t.Fatalf("log is not a single JSON line: %v", err)
	}
	if rec.Event != EventAppLaunch {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestLogNeverBlocksCaller(t *testing.T) {
	// Unwritable directory: appends fail, Log must still return
	logger := New(filepath.Join(t.TempDir(), "missing", "nested"))

	for i := 0; i < 1000; i++ {
		logger.Log(EventCapture, "x")
	}
	logger.Close()
}
