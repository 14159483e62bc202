package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

var ErrMalformed = errors.New("storage: malformed run data")

const (
	metadataFile   = "metadata.json"
	panelsFile     = "panels.csv"
	roundsFile     = "rounds.csv"
	checkpointFile = "swarm.pb"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Preset      string             `json:"preset,omitempty"`
	Sampler     string             `json:"sampler"`
	Timestamp   time.Time          `json:"timestamp"`
	Seed        int64              `json:"seed"`
	Panels      int                `json:"panels"`
	Rounds      int                `json:"rounds"`
	BodyDt      float64            `json:"body_dt"`
	Params      anneal.Params      `json:"params"`
	Stats       anneal.Stats       `json:"stats"`
	FinalEnergy float64            `json:"final_energy"`
	Metrics     map[string]float64 `json:"metrics"`
}

// NewMetadata describes a run of cfg. Save fills in the ID, timestamp and
// outcome fields.
func NewMetadata(cfg *config.Config, preset string) RunMetadata {
	return RunMetadata{
		Name:    cfg.Name,
		Preset:  preset,
		Sampler: cfg.Sampler,
		Seed:    cfg.Seed,
		Panels:  cfg.Panels,
		Rounds:  cfg.Rounds,
		BodyDt:  cfg.Body.Dt,
		Params:  cfg.Params(),
	}
}

// Save writes a run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d_%s", slug(meta.Name), now.Unix(), uuid.NewString()[:8])
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Stats = result.Stats
	meta.FinalEnergy = finite(result.Final().Energy)
	meta.Metrics = make(map[string]float64, len(result.Metrics))
	for k, v := range result.Metrics {
		meta.Metrics[k] = finite(v)
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writePanels(filepath.Join(runDir, panelsFile), result.Swarm); err != nil {
		return "", err
	}
	if err := writeRounds(filepath.Join(runDir, roundsFile), result.Rounds); err != nil {
		return "", err
	}
	if err := writeCheckpoint(filepath.Join(runDir, checkpointFile), result.Swarm, &result.Body); err != nil {
		return "", err
	}

	return runID, nil
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadPanels(runID string) ([]swarm.Panel, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, panelsFile))
	if err != nil {
		return nil, err
	}

	panels := make([]swarm.Panel, 0, len(records))
	for i, rec := range records {
		v, err := parseFloats(rec, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrMalformed, panelsFile, i+1, err)
		}
		panels = append(panels, swarm.Panel{
			Position:     geom.Point3{X: v[1], Y: v[2], Z: v[3]},
			Temperature:  v[4],
			EnergyLevel:  v[5],
			Connectivity: int(v[6]),
			Thruster:     v[7],
		})
	}
	return panels, nil
}

func (s *Store) LoadRounds(runID string) ([]sim.RoundStats, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, roundsFile))
	if err != nil {
		return nil, err
	}

	rounds := make([]sim.RoundStats, 0, len(records))
	for i, rec := range records {
		v, err := parseFloats(rec, len(roundsHeader))
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %w", ErrMalformed, roundsFile, i+1, err)
		}
		rounds = append(rounds, sim.RoundStats{
			Round:            int(v[0]),
			Energy:           v[1],
			MinSeparation:    v[2],
			MaxTemperature:   v[3],
			Clearance:        v[4],
			MeanConnectivity: v[5],
			Body:             [3]float64{v[6], v[7], v[8]},
			Stats: anneal.Stats{
				Trials:               int(v[9]),
				Accepted:             int(v[10]),
				StarRejections:       int(v[11]),
				RepairRejections:     int(v[12]),
				MetropolisRejections: int(v[13]),
				DegenerateRejections: int(v[14]),
				Repairs:              int(v[15]),
				Overheats:            int(v[16]),
			},
		})
	}
	return rounds, nil
}

func (s *Store) LoadCheckpoint(runID string) (*swarm.Swarm, *swarm.CentralBody, error) {
	return readCheckpoint(filepath.Join(s.baseDir, runID, checkpointFile))
}

func (s *Store) Delete(runID string) error {
	if runID == "" || strings.ContainsAny(runID, `/\`) {
		return fmt.Errorf("storage: invalid run id %q", runID)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}

var panelsHeader = []string{"index", "x", "y", "z", "temperature", "energy_level", "connectivity", "thruster"}

var roundsHeader = []string{
	"round", "energy", "min_separation", "max_temperature", "clearance", "mean_connectivity",
	"body_x", "body_y", "body_z",
	"trials", "accepted", "star_rejections", "repair_rejections", "metropolis_rejections",
	"degenerate_rejections", "repairs", "overheats",
}

func writePanels(path string, sw *swarm.Swarm) error {
	rows := make([][]string, 0, sw.Len())
	for i, p := range sw.Panels {
		rows = append(rows, []string{
			strconv.Itoa(i),
			formatFloat(p.Position.X),
			formatFloat(p.Position.Y),
			formatFloat(p.Position.Z),
			formatFloat(p.Temperature),
			formatFloat(p.EnergyLevel),
			strconv.Itoa(p.Connectivity),
			formatFloat(p.Thruster),
		})
	}
	return writeCSV(path, panelsHeader, rows)
}

func writeRounds(path string, rounds []sim.RoundStats) error {
	rows := make([][]string, 0, len(rounds))
	for _, r := range rounds {
		st := r.Stats
		rows = append(rows, []string{
			strconv.Itoa(r.Round),
			formatFloat(r.Energy),
			formatFloat(r.MinSeparation),
			formatFloat(r.MaxTemperature),
			formatFloat(r.Clearance),
			formatFloat(r.MeanConnectivity),
			formatFloat(r.Body[0]),
			formatFloat(r.Body[1]),
			formatFloat(r.Body[2]),
			strconv.Itoa(st.Trials),
			strconv.Itoa(st.Accepted),
			strconv.Itoa(st.StarRejections),
			strconv.Itoa(st.RepairRejections),
			strconv.Itoa(st.MetropolisRejections),
			strconv.Itoa(st.DegenerateRejections),
			strconv.Itoa(st.Repairs),
			strconv.Itoa(st.Overheats),
		})
	}
	return writeCSV(path, roundsHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows, header excluded.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(rec []string, want int) ([]float64, error) {
	if len(rec) != want {
		return nil, fmt.Errorf("expected %d fields, got %d", want, len(rec))
	}
	out := make([]float64, len(rec))
	for i, field := range rec {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// finite maps NaN and infinities to zero so metadata stays valid JSON.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func slug(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
