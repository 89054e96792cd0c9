package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OpenWriter creates the output file at path, wrapping it in a gzip or zstd
// writer when the extension is .gz or .zst. Closing the returned writer
// flushes the compressor and closes the file.
func OpenWriter(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	switch filepath.Ext(path) {
	case ".gz":
		return &compressedWriter{compressor: gzip.NewWriter(f), file: f}, nil
	case ".zst":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("creating zstd writer: %w", err)
		}
		return &compressedWriter{compressor: zw, file: f}, nil
	default:
		return f, nil
	}
}

type compressedWriter struct {
	compressor io.WriteCloser
	file       *os.File
}

func (w *compressedWriter) Write(p []byte) (int, error) {
	return w.compressor.Write(p)
}

func (w *compressedWriter) Close() error {
	if err := w.compressor.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}
