package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/shaarli/shaarli-client-go/internal/errors"
)

// Writer renders responses to stdout or to a file.
type Writer struct {
	mu     sync.Mutex
	writer io.Writer
	closer io.Closer
	format Format
	closed bool
}

// Config holds output configuration.
type Config struct {
	Format Format
	// FilePath receives the output instead of the default writer when set.
	// An existing file is truncated.
	FilePath string
}

// NewWriter creates a writer. Output goes to config.FilePath when set,
// otherwise to w.
func NewWriter(w io.Writer, config Config) (*Writer, error) {
	format := config.Format
	if format == "" {
		format = DefaultFormat
	}
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	out := &Writer{writer: w, format: format}
	if config.FilePath != "" {
		f, err := os.Create(config.FilePath)
		if err != nil {
			return nil, errors.NewConfigurationErrorf("cannot open output file: %v", err)
		}
		out.writer = f
		out.closer = f
	}
	return out, nil
}

// Format returns the format used by the writer.
func (w *Writer) Format() Format {
	return w.format
}

// WriteResponse renders body and writes it followed by a newline.
func (w *Writer) WriteResponse(body []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("write on closed output")
	}
	return RenderTo(w.writer, w.format, body)
}

// Close closes the output file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	if w.closer != nil {
		return w.closer.Close()
	}
	return nil
}
