// Package export writes traced samples to disk. Every exporter receives
// samples already in canonical (ray number, step) order.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/signalsfoundry/ionotracer/model"
)

// ErrUnknownFormat is returned by ParseFormat for an unsupported name.
var ErrUnknownFormat = errors.New("unknown export format")

// Format selects an on-disk encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatMatrix
	FormatProtoDelim
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatMatrix:
		return "matrix"
	case FormatProtoDelim:
		return "protodelim"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Extension is the file suffix conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatMatrix:
		return ".bin"
	case FormatProtoDelim:
		return ".pb"
	default:
		return ".csv"
	}
}

// ParseFormat maps a config or flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "matrix", "bin", "binary":
		return FormatMatrix, nil
	case "protodelim", "proto", "pb":
		return FormatProtoDelim, nil
	default:
		return FormatCSV, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Exporter encodes a batch of samples onto w.
type Exporter interface {
	Export(w io.Writer, samples []model.Sample) error
}

// New returns the exporter for f.
func New(f Format) (Exporter, error) {
	switch f {
	case FormatCSV:
		return CSVExporter{}, nil
	case FormatMatrix:
		return MatrixExporter{}, nil
	case FormatProtoDelim:
		return ProtoExporter{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
}

// WriteFile encodes samples to path. With compress set the stream is zstd
// compressed and ".zst" is appended to path unless already present. It
// returns the path actually written.
func WriteFile(path string, f Format, compress bool, samples []model.Sample) (string, error) {
	exp, err := New(f)
	if err != nil {
		return "", err
	}
	if compress && !strings.HasSuffix(path, ".zst") {
		path += ".zst"
	}

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	var w io.Writer = file
	var zw *zstd.Encoder
	if compress {
		zw, err = zstd.NewWriter(file)
		if err != nil {
			return "", fmt.Errorf("zstd writer: %w", err)
		}
		w = zw
	}

	if err := exp.Export(w, samples); err != nil {
		if zw != nil {
			zw.Close()
		}
		return "", fmt.Errorf("export %s: %w", f, err)
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return "", fmt.Errorf("flush zstd stream: %w", err)
		}
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

// OpenFile opens path for reading, transparently decompressing ".zst"
// files. The caller closes the returned reader.
func OpenFile(path string) (io.ReadCloser, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return file, nil
	}
	zr, err := zstd.NewReader(file, zstd.WithDecoderConcurrency(0))
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	return &zstdReadCloser{Decoder: zr, file: file}, nil
}

type zstdReadCloser struct {
	*zstd.Decoder
	file *os.File
}

func (z *zstdReadCloser) Close() error {
	z.Decoder.Close()
	return z.file.Close()
}
