package signal

import (
	"context"
	"io"
	"os"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// FileSource reads a document from the local filesystem.
type FileSource struct {
	path string
	log  logger.Logger
}

// NewFileSource creates a SignalSource for the file at path.
func NewFileSource(path string, log logger.Logger) service.SignalSource {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &FileSource{path: path, log: log.WithComponent("signal_source")}
}

// Load reads and decodes the file. A missing file fails with missing_input and
// a hint on how to produce it.
func (s *FileSource) Load(ctx context.Context) (*models.LoadedSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ErrMissingInputFile(s.path)
		}
		return nil, errors.ErrInvalidDocument("failed to read signal file").WithCause(err).WithMetadata("path", s.path)
	}
	if len(data) > constants.MaxDocumentBytes {
		return nil, errors.ErrInvalidDocument("signal file exceeds the maximum document size").WithMetadata("path", s.path)
	}
	return load(ctx, s.log, data, s.path)
}

// BytesSource serves an in-memory document, e.g. an HTTP request body.
type BytesSource struct {
	data   []byte
	source string
	log    logger.Logger
}

// NewBytesSource creates a SignalSource over data. source names the origin in
// logs and results.
func NewBytesSource(data []byte, source string, log logger.Logger) service.SignalSource {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &BytesSource{data: data, source: source, log: log.WithComponent("signal_source")}
}

func (s *BytesSource) Load(ctx context.Context) (*models.LoadedSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return load(ctx, s.log, s.data, s.source)
}

// ReaderSource reads a document from a stream such as stdin.
type ReaderSource struct {
	r      io.Reader
	source string
	log    logger.Logger
}

func NewReaderSource(r io.Reader, source string, log logger.Logger) service.SignalSource {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &ReaderSource{r: r, source: source, log: log.WithComponent("signal_source")}
}

// Load reads at most the maximum document size from the stream.
func (s *ReaderSource) Load(ctx context.Context) (*models.LoadedSignal, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(s.r, constants.MaxDocumentBytes+1))
	if err != nil {
		return nil, errors.ErrInvalidDocument("failed to read signal stream").WithCause(err)
	}
	if len(data) > constants.MaxDocumentBytes {
		return nil, errors.ErrInvalidDocument("signal stream exceeds the maximum document size")
	}
	return load(ctx, s.log, data, s.source)
}

func load(ctx context.Context, log logger.Logger, data []byte, source string) (*models.LoadedSignal, error) {
	doc, warnings, err := Decode(data)
	if err != nil {
		log.Warn(ctx, "Rejected signal document", logger.Fields{"source": source, "error": err.Error()})
		return nil, err
	}
	for _, w := range warnings {
		log.Warn(ctx, "Malformed section ignored", logger.Fields{"source": source, "section": models.WarningSection(w)})
	}
	log.Debug(ctx, "Signal document loaded", logger.Fields{"source": source, "bytes": len(data)})
	return &models.LoadedSignal{Document: doc, Warnings: warnings, Source: source}, nil
}
