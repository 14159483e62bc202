package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/geom"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

func testResult() *sim.Result {
	sw := swarm.New("Hyperion", []swarm.Panel{
		{Position: geom.Point3{X: 10, Y: 0.1, Z: -3}, Temperature: 1000, EnergyLevel: 80.5, Connectivity: 1, Thruster: 1},
		{Position: geom.Point3{X: 1.0 / 3, Y: 12, Z: 0}, Temperature: 1499.25, EnergyLevel: 4, Connectivity: 1, Thruster: 0.5},
	})
	return &sim.Result{
		Seed:  42,
		Swarm: sw,
		Body:  swarm.CentralBody{Position: geom.Point3{X: 1}, Velocity: geom.Point3{X: 0.5}},
		Rounds: []sim.RoundStats{
			{Round: 0, Energy: 0.07, MinSeparation: 15.2, MaxTemperature: 1600, Clearance: 10},
			{Round: 1, Energy: 0.06, MinSeparation: 16, MaxTemperature: 1499.25, Clearance: 9.5, MeanConnectivity: 1,
				Body: [3]float64{0.5, 0, 0}, Stats: anneal.Stats{Trials: 200, Accepted: 150, MetropolisRejections: 50, Overheats: 1}},
		},
		Stats:       anneal.Stats{Trials: 200, Accepted: 150, MetropolisRejections: 50, Overheats: 1},
		Metrics:     map[string]float64{"energy": 0.06, "min_separation": math.Inf(1)},
		RoundsTaken: 1,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Seed = 42
	result := testResult()

	runID, err := st.Save(NewMetadata(cfg, "hyperion"), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !strings.HasPrefix(runID, "hyperion_") {
		t.Errorf("unexpected run id %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.ID != runID || meta.Name != "Hyperion" || meta.Preset != "hyperion" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Params != anneal.DefaultParams() {
		t.Errorf("params not persisted: %+v", meta.Params)
	}
	if meta.Stats != result.Stats {
		t.Errorf("stats = %+v", meta.Stats)
	}
	if meta.FinalEnergy != 0.06 {
		t.Errorf("expected final energy 0.06, got %f", meta.FinalEnergy)
	}
	if meta.Metrics["min_separation"] != 0 {
		t.Errorf("infinite metric should be stored as 0, got %f", meta.Metrics["min_separation"])
	}

	panels, err := st.LoadPanels(runID)
	if err != nil {
		t.Fatalf("load panels failed: %v", err)
	}
	if len(panels) != 2 {
		t.Fatalf("expected 2 panels, got %d", len(panels))
	}
	for i := range panels {
		if panels[i] != result.Swarm.Panels[i] {
			t.Errorf("panel %d = %+v, want %+v", i, panels[i], result.Swarm.Panels[i])
		}
	}

	rounds, err := st.LoadRounds(runID)
	if err != nil {
		t.Fatalf("load rounds failed: %v", err)
	}
	if len(rounds) != 2 {
		t.Fatalf("expected 2 rounds, got %d", len(rounds))
	}
	if rounds[1] != result.Rounds[1] {
		t.Errorf("round 1 = %+v, want %+v", rounds[1], result.Rounds[1])
	}
}

func TestStoreCheckpoint(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()

	runID, err := st.Save(NewMetadata(config.DefaultConfig(), ""), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	sw, body, err := st.LoadCheckpoint(runID)
	if err != nil {
		t.Fatalf("load checkpoint failed: %v", err)
	}

	if sw.Name != "Hyperion" || sw.Len() != 2 {
		t.Fatalf("swarm = %+v", sw)
	}
	for i := range sw.Panels {
		if sw.Panels[i] != result.Swarm.Panels[i] {
			t.Errorf("panel %d = %+v, want %+v", i, sw.Panels[i], result.Swarm.Panels[i])
		}
	}
	if *body != result.Body {
		t.Errorf("body = %+v, want %+v", body, result.Body)
	}
}

func TestCheckpointPrecision(t *testing.T) {
	sw := swarm.New("p", []swarm.Panel{{
		Position:     geom.Point3{X: 0.1 + 0.2, Y: math.Pi, Z: -1e-300},
		Temperature:  1499.9999999999998,
		EnergyLevel:  math.Nextafter(20, 21),
		Connectivity: 3,
		Thruster:     1.0 / 3,
	}})
	body := &swarm.CentralBody{Position: geom.Point3{X: math.SmallestNonzeroFloat64}, Velocity: geom.Point3{Y: math.MaxFloat64}}

	data, err := EncodeCheckpoint(sw, body)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, gotBody, err := DecodeCheckpoint(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.Panels[0] != sw.Panels[0] {
		t.Errorf("panel = %+v, want %+v", got.Panels[0], sw.Panels[0])
	}
	if *gotBody != *body {
		t.Errorf("body = %+v, want %+v", gotBody, body)
	}
}

func TestDecodeCheckpointMalformed(t *testing.T) {
	if _, _, err := DecodeCheckpoint([]byte{0xff, 0x01, 0x02}); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed for garbage, got %v", err)
	}

	empty, err := EncodeCheckpoint(swarm.New("x", nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	sw, _, err := DecodeCheckpoint(empty)
	if err != nil {
		t.Fatalf("empty swarm should decode: %v", err)
	}
	if sw.Len() != 0 {
		t.Errorf("expected no panels, got %d", sw.Len())
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list on empty dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	for i := 0; i < 2; i++ {
		if _, err := st.Save(NewMetadata(config.DefaultConfig(), ""), testResult()); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID == runs[1].ID {
		t.Error("run ids must be unique")
	}
	if runs[0].Timestamp.Before(runs[1].Timestamp) {
		t.Error("runs should be listed newest first")
	}

	if err := st.Delete(runs[0].ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if runs, _ = st.List(); len(runs) != 1 {
		t.Errorf("expected 1 run after delete, got %d", len(runs))
	}
	if err := st.Delete("../escape"); err == nil {
		t.Error("expected error for path-like run id")
	}
}

func TestLoadMissing(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.Load("nope"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, err := st.LoadPanels("nope"); err == nil {
		t.Error("expected error for missing panels")
	}
}

func TestLoadPanelsMalformed(t *testing.T) {
	tmpDir := t.TempDir()
	runDir := filepath.Join(tmpDir, "bad")
	if err := os.MkdirAll(runDir, 0755); err != nil {
		t.Fatal(err)
	}
	doc := "index,x,y,z,temperature,energy_level,connectivity,thruster\n0,1,2,abc,1,1,1,1\n"
	if err := os.WriteFile(filepath.Join(runDir, panelsFile), []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(tmpDir).LoadPanels("bad"); !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestExportRun(t *testing.T) {
	st := New(t.TempDir())
	result := testResult()
	result.Rounds[0].MinSeparation = math.Inf(1)

	runID, err := st.Save(NewMetadata(config.DefaultConfig(), ""), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportRun(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if data.Run.ID != runID {
		t.Errorf("run id = %q", data.Run.ID)
	}
	if len(data.Panels) != 2 || len(data.Rounds) != 2 {
		t.Errorf("export has %d panels and %d rounds", len(data.Panels), len(data.Rounds))
	}
	if data.Rounds[0].MinSeparation != 0 {
		t.Errorf("infinite separation should export as 0, got %f", data.Rounds[0].MinSeparation)
	}
	if data.Body[1] != [3]float64{0.5, 0, 0} {
		t.Errorf("body velocity = %v", data.Body[1])
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Hyperion", "hyperion"},
		{"  ", "run"},
		{"my swarm/2", "my_swarm_2"},
	}
	for _, tt := range tests {
		if got := slug(tt.in); got != tt.want {
			t.Errorf("slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
