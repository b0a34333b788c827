package emitter

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// WriterEmitter writes every result to a stream, e.g. stdout.
type WriterEmitter struct {
	mu     sync.Mutex
	w      io.Writer
	format constants.OutputFormat
	name   string
}

// NewWriterEmitter creates an emitter writing to w. Concurrent Emit calls are
// serialized so outputs never interleave.
func NewWriterEmitter(w io.Writer, format constants.OutputFormat) *WriterEmitter {
	return &WriterEmitter{w: w, format: format, name: "writer"}
}

func (e *WriterEmitter) Name() string { return e.name }

func (e *WriterEmitter) Emit(ctx context.Context, result *models.ScoreResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(result, e.format)
	if err != nil {
		return errors.ErrEmitFailed(e.name, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, err := e.w.Write(data); err != nil {
		return errors.ErrEmitFailed(e.name, err)
	}
	return nil
}

func (e *WriterEmitter) Close() error { return nil }

// FileEmitter writes each result to <dir>/<report_id>.<ext>.
type FileEmitter struct {
	dir    string
	format constants.OutputFormat
	log    logger.Logger
}

// NewFileEmitter creates the output directory if needed.
func NewFileEmitter(dir string, format constants.OutputFormat, log logger.Logger) (*FileEmitter, error) {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.ErrInvalidConfig("failed to create output directory").WithCause(err).WithMetadata("directory", dir)
	}
	return &FileEmitter{dir: dir, format: format, log: log.WithComponent("file_emitter")}, nil
}

func (e *FileEmitter) Name() string { return "file" }

// Emit writes to a temporary file first and renames it into place, so readers
// never observe a partial report.
func (e *FileEmitter) Emit(ctx context.Context, result *models.ScoreResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(result, e.format)
	if err != nil {
		return errors.ErrEmitFailed(e.Name(), err)
	}

	path := e.Path(result.ReportID)
	tmp, err := os.CreateTemp(e.dir, ".report-*")
	if err != nil {
		return errors.ErrEmitFailed(e.Name(), err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.ErrEmitFailed(e.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return errors.ErrEmitFailed(e.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.ErrEmitFailed(e.Name(), err)
	}

	e.log.Debug(ctx, "Report written", logger.Fields{"path": path, "report_id": result.ReportID})
	return nil
}

// Path returns the file a report with id is written to.
func (e *FileEmitter) Path(id string) string {
	return filepath.Join(e.dir, id+Extension(e.format))
}

func (e *FileEmitter) Close() error { return nil }
