package export

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/signalsfoundry/ionotracer/model"
)

var end = binary.LittleEndian

var matrixMagic = [8]byte{'I', 'O', 'N', 'O', 'M', 'T', 'X', '1'}

// ErrBadMatrix is returned when a matrix stream has the wrong magic or
// shape.
var ErrBadMatrix = errors.New("malformed sample matrix")

// MatrixHeader precedes the row-major float64 payload.
type MatrixHeader struct {
	Magic [8]byte
	Rows  int64
	Cols  int64
}

// MatrixExporter dumps samples as a little-endian float64 matrix with one
// row per sample and Columns() as columns. Enum fields are stored as their
// integer codes.
type MatrixExporter struct{}

func (MatrixExporter) Export(w io.Writer, samples []model.Sample) error {
	bw := bufio.NewWriter(w)
	hd := MatrixHeader{Magic: matrixMagic, Rows: int64(len(samples)), Cols: int64(len(columns))}
	if err := binary.Write(bw, end, &hd); err != nil {
		return err
	}
	row := make([]float64, len(columns))
	for _, s := range samples {
		for i, c := range columns {
			row[i] = c.value(s)
		}
		if err := binary.Write(bw, end, row); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadMatrix decodes a stream written by MatrixExporter.
func ReadMatrix(r io.Reader) (MatrixHeader, [][]float64, error) {
	var hd MatrixHeader
	if err := binary.Read(r, end, &hd); err != nil {
		return hd, nil, fmt.Errorf("read header: %w", err)
	}
	if hd.Magic != matrixMagic || hd.Rows < 0 || hd.Cols <= 0 {
		return hd, nil, ErrBadMatrix
	}
	out := make([][]float64, hd.Rows)
	for i := range out {
		out[i] = make([]float64, hd.Cols)
		if err := binary.Read(r, end, out[i]); err != nil {
			return hd, nil, fmt.Errorf("read row %d: %w", i, err)
		}
	}
	return hd, out, nil
}
