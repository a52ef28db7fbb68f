package fridgevision

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// ModelCallLogger is the interface for recording calls made to the external model.
type ModelCallLogger interface {
	LogCall(call ModelCallLog) error
}

// NewModelCallLogFilePath returns a file path based on a cleaned up model name or id to make it easier to identify logs produced with various models.
func NewModelCallLogFilePath(model string) string {
	return fmt.Sprintf(
		"./logs/%d.%s.json",
		time.Now().Unix(),
		strings.ReplaceAll(strings.ToLower(model), ":", "_"),
	)
}

// ModelCallLog represents a single request/response exchange with the model
type ModelCallLog struct {
	Gateway   string    `json:"gateway"`
	Timestamp time.Time `json:"timestamp"`
	Prompt    string    `json:"prompt,omitempty"`
	Reply     string    `json:"reply,omitempty"`
	LatencyMS int64     `json:"latency_ms,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// FileModelCallLogger logs to a file, accumulating calls and flushing at the end
type FileModelCallLogger struct {
	calls  []ModelCallLog
	writer io.Writer
}

// NewFileModelCallLogger creates a new file-based model call logger
func NewFileModelCallLogger(writer io.Writer) *FileModelCallLogger {
	return &FileModelCallLogger{
		calls:  make([]ModelCallLog, 0),
		writer: writer,
	}
}

// LogCall logs a call to the buffer (does not flush immediately)
func (fml *FileModelCallLogger) LogCall(call ModelCallLog) error {
	fml.calls = append(fml.calls, call)
	return nil
}

// Flush flushes all accumulated calls to the writer
func (fml *FileModelCallLogger) Flush() error {
	if fml.writer == nil {
		return nil
	}

	data, err := json.MarshalIndent(map[string]any{
		"model_call_session": map[string]any{
			"timestamp": time.Now(),
			"calls":     fml.calls,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model call log: %w", err)
	}

	if _, err := fml.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write model call log: %w", err)
	}

	// Clear the buffer after successful write
	fml.calls = fml.calls[:0]
	return nil
}

// NoOpModelCallLogger is a logger that discards all log entries
type NoOpModelCallLogger struct{}

// NewNoOpModelCallLogger creates a new no-op model call logger
func NewNoOpModelCallLogger() *NoOpModelCallLogger {
	return &NoOpModelCallLogger{}
}

// LogCall discards the call log (no-op)
func (nop *NoOpModelCallLogger) LogCall(call ModelCallLog) error {
	return nil
}

// StdoutModelCallLogger logs each call as a JSON line to stdout (for Lambda/CloudWatch)
type StdoutModelCallLogger struct{}

// NewStdoutModelCallLogger creates a new stdout-based model call logger
func NewStdoutModelCallLogger() *StdoutModelCallLogger {
	return &StdoutModelCallLogger{}
}

// LogCall writes the call as a JSON line to os.Stdout
func (l *StdoutModelCallLogger) LogCall(call ModelCallLog) error {
	data, err := json.Marshal(call)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(data))
	return nil
}
