package storage

import (
	"fmt"
	"os"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/swarm"
)

// EncodeCheckpoint serializes a swarm and its body as a protobuf Struct.
// Every field keeps full float64 precision, so a decoded checkpoint is the
// final state of the run bit for bit.
func EncodeCheckpoint(sw *swarm.Swarm, body *swarm.CentralBody) ([]byte, error) {
	panels := make([]any, len(sw.Panels))
	for i, p := range sw.Panels {
		panels[i] = map[string]any{
			"position":     vector(p.Position),
			"temperature":  p.Temperature,
			"energy_level": p.EnergyLevel,
			"connectivity": p.Connectivity,
			"thruster":     p.Thruster,
		}
	}

	if body == nil {
		body = &swarm.CentralBody{}
	}
	st, err := structpb.NewStruct(map[string]any{
		"name":   sw.Name,
		"panels": panels,
		"body": map[string]any{
			"position": vector(body.Position),
			"velocity": vector(body.Velocity),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("storage: encode checkpoint: %w", err)
	}
	return proto.Marshal(st)
}

func DecodeCheckpoint(data []byte) (*swarm.Swarm, *swarm.CentralBody, error) {
	var st structpb.Struct
	if err := proto.Unmarshal(data, &st); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	fields := st.GetFields()
	list := fields["panels"].GetListValue()
	if list == nil {
		return nil, nil, fmt.Errorf("%w: checkpoint has no panel list", ErrMalformed)
	}

	panels := make([]swarm.Panel, 0, len(list.GetValues()))
	for i, v := range list.GetValues() {
		pf := v.GetStructValue().GetFields()
		pos, err := point(pf["position"])
		if err != nil {
			return nil, nil, fmt.Errorf("%w: panel %d: %w", ErrMalformed, i, err)
		}
		panels = append(panels, swarm.Panel{
			Position:     pos,
			Temperature:  pf["temperature"].GetNumberValue(),
			EnergyLevel:  pf["energy_level"].GetNumberValue(),
			Connectivity: int(pf["connectivity"].GetNumberValue()),
			Thruster:     pf["thruster"].GetNumberValue(),
		})
	}

	body := &swarm.CentralBody{}
	if bf := fields["body"].GetStructValue().GetFields(); bf != nil {
		var err error
		if body.Position, err = point(bf["position"]); err != nil {
			return nil, nil, fmt.Errorf("%w: body: %w", ErrMalformed, err)
		}
		if body.Velocity, err = point(bf["velocity"]); err != nil {
			return nil, nil, fmt.Errorf("%w: body: %w", ErrMalformed, err)
		}
	}

	return swarm.New(fields["name"].GetStringValue(), panels), body, nil
}

func writeCheckpoint(path string, sw *swarm.Swarm, body *swarm.CentralBody) error {
	data, err := EncodeCheckpoint(sw, body)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func readCheckpoint(path string) (*swarm.Swarm, *swarm.CentralBody, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return DecodeCheckpoint(data)
}

func vector(p geom.Point3) []any {
	return []any{p.X, p.Y, p.Z}
}

func point(v *structpb.Value) (geom.Point3, error) {
	vals := v.GetListValue().GetValues()
	if len(vals) != 3 {
		return geom.Point3{}, fmt.Errorf("expected 3 coordinates, got %d", len(vals))
	}
	return geom.Point3{
		X: vals[0].GetNumberValue(),
		Y: vals[1].GetNumberValue(),
		Z: vals[2].GetNumberValue(),
	}, nil
}
