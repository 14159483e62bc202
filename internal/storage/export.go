package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	Body    [2][3]float64      `json:"body"`
	Panels  []swarm.Panel      `json:"panels"`
	Rounds  []sim.RoundStats   `json:"rounds"`
	Metrics map[string]float64 `json:"metrics"`
}

// ExportJSON writes a self-contained JSON document for a run. Values JSON
// cannot carry (NaN, infinities) are written as zero.
func ExportJSON(w io.Writer, meta RunMetadata, panels []swarm.Panel, body *swarm.CentralBody, rounds []sim.RoundStats) error {
	data := ExportData{
		Run:     meta,
		Panels:  panels,
		Rounds:  make([]sim.RoundStats, len(rounds)),
		Metrics: meta.Metrics,
	}
	if body != nil {
		data.Body = [2][3]float64{
			{body.Position.X, body.Position.Y, body.Position.Z},
			{body.Velocity.X, body.Velocity.Y, body.Velocity.Z},
		}
	}

	for i, r := range rounds {
		r.Energy = finite(r.Energy)
		r.MinSeparation = finite(r.MinSeparation)
		r.MaxTemperature = finite(r.MaxTemperature)
		r.Clearance = finite(r.Clearance)
		data.Rounds[i] = r
	}
	data.Run.FinalEnergy = finite(meta.FinalEnergy)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportRun loads a stored run and writes it with ExportJSON.
func (s *Store) ExportRun(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	panels, err := s.LoadPanels(runID)
	if err != nil {
		return err
	}
	rounds, err := s.LoadRounds(runID)
	if err != nil {
		return err
	}
	_, body, err := s.LoadCheckpoint(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, *meta, panels, body, rounds)
}
