package export

import (
	"encoding/csv"
	"io"

	"github.com/signalsfoundry/ionotracer/model"
)

// CSVExporter writes one header row followed by one row per sample. Enum
// fields are written by name.
type CSVExporter struct{}

func (CSVExporter) Export(w io.Writer, samples []model.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns()); err != nil {
		return err
	}
	row := make([]string, len(columns))
	for _, s := range samples {
		for i, c := range columns {
			row[i] = c.format(s)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
