package export

import (
	"bufio"
	"errors"
	"io"

	"google.golang.org/protobuf/encoding/protodelim"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/signalsfoundry/ionotracer/model"
)

// ProtoExporter writes each sample as a varint length-prefixed
// google.protobuf.Struct keyed by column name.
type ProtoExporter struct{}

func (ProtoExporter) Export(w io.Writer, samples []model.Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		msg, err := sampleStruct(s)
		if err != nil {
			return err
		}
		if _, err := protodelim.MarshalTo(bw, msg); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func sampleStruct(s model.Sample) (*structpb.Struct, error) {
	fields := make(map[string]any, len(columns))
	for _, c := range columns {
		if c.text != nil {
			fields[c.name] = c.text(s)
			continue
		}
		fields[c.name] = c.value(s)
	}
	fields["terminal"] = s.Terminal
	return structpb.NewStruct(fields)
}

// ReadProto decodes every record of a stream written by ProtoExporter.
func ReadProto(r io.Reader) ([]*structpb.Struct, error) {
	br := bufio.NewReader(r)
	var out []*structpb.Struct
	for {
		msg := &structpb.Struct{}
		if err := protodelim.UnmarshalFrom(br, msg); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, err
		}
		out = append(out, msg)
	}
}
