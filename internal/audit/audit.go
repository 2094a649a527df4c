package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event enumerates the lifecycle events recorded by the audit log.
type Event string

const (
	EventAppLaunch      Event = "appLaunch"
	EventCameraGranted  Event = "cameraGranted"
	EventCameraDenied   Event = "cameraDenied"
	EventCapture        Event = "capture"
	EventAnalyzeStart   Event = "analyzeStart"
	EventAnalyzeSuccess Event = "analyzeSuccess"
	EventAnalyzeError   Event = "analyzeError"
	EventSessionSaved   Event = "sessionSaved"
)

// Record is one audit log line.
type Record struct {
	Timestamp time.Time `json:"timestamp"`
	Event     Event     `json:"event"`
	Detail    string    `json:"detail,omitempty"`
}

// Logger appends newline-delimited JSON records to a single file. All
// writes go through one background worker so callers never block on log
// I/O; write failures are swallowed.
type Logger struct {
	ch   chan Record
	done chan struct{}
	path string

	mu     sync.Mutex
	closed bool
}

// New starts the background writer. The log file lives in dir and is
// created on first write.
func New(dir string) *Logger {
	l := &Logger{
		ch:   make(chan Record, 256),
		done: make(chan struct{}),
		path: filepath.Join(dir, "audit_log.jsonl"),
	}
	go l.run()
	return l
}

// Log enqueues an event. Best-effort: if the writer has fallen behind and
// the queue is full, the record is dropped rather than blocking the
// caller. Logging after Close is a silent no-op.
func (l *Logger) Log(event Event, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	rec := Record{Timestamp: time.Now().UTC(), Event: event, Detail: detail}
	select {
	case l.ch <- rec:
	default:
	}
}

// Close stops accepting records, drains the queue and waits for the
// writer to finish. Safe to call more than once.
func (l *Logger) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.ch)
	l.mu.Unlock()

	<-l.done
}

func (l *Logger) run() {
	defer close(l.done)
	for rec := range l.ch {
		l.append(rec)
	}
}

func (l *Logger) append(rec Record) {
	line, err := json.Marshal(rec)
	if err != nil {
		return
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	f.Write(append(line, '\n'))
}
