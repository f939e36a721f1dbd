package toolhub

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Recorder appends usage records to a sink, one JSON line per record, in
// arrival order. Recording never fails upward: sink errors are logged to the
// diagnostic logger and swallowed, so observability can never break the tool
// call that triggered it.
type Recorder struct {
	mu     sync.Mutex
	w      io.Writer
	path   string
	file   *os.File
	logger *zap.Logger
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderLogger sets the diagnostic logger for swallowed sink errors.
// Defaults to zap.NewNop().
func WithRecorderLogger(logger *zap.Logger) RecorderOption {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// NewRecorder creates a Recorder writing to w. Used directly in tests and by
// callers that manage their own sink.
func NewRecorder(w io.Writer, opts ...RecorderOption) *Recorder {
	r := &Recorder{w: w, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewFileRecorder creates a Recorder appending to the file at path. The file
// and its directory are created lazily on first record, so constructing a
// recorder for a disabled or never-used log costs nothing.
func NewFileRecorder(path string, opts ...RecorderOption) *Recorder {
	r := &Recorder{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends one record. Errors are swallowed after logging; the
// originating invocation's outcome is never affected.
func (r *Recorder) Record(rec UsageRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, err := r.sink()
	if err != nil {
		r.logger.Warn("usage record dropped: sink unavailable", zap.Error(err))
		return
	}
	line, err := json.Marshal(rec)
	if err != nil {
		r.logger.Warn("usage record dropped: marshal failed", zap.Error(err))
		return
	}
	if _, err := w.Write(append(line, '\n')); err != nil {
		r.logger.Warn("usage record dropped: write failed", zap.Error(err))
	}
}

// sink must be called with the lock held.
func (r *Recorder) sink() (io.Writer, error) {
	if r.w != nil {
		return r.w, nil
	}
	if r.file != nil {
		return r.file, nil
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	r.file = f
	return f, nil
}

// Close releases the underlying file, if any.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}
