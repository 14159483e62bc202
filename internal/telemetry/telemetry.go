// Package telemetry turns engine signals and round snapshots into log
// records and counters.
package telemetry

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/san-kum/hyperion/internal/anneal"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/swarm"
)

// NewLogger builds the process logger. json selects the production
// encoder; otherwise a console encoder without stack traces is used.
func NewLogger(level string, json bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Level maps a signal to its log level.
func Level(k anneal.SignalKind) zapcore.Level {
	switch k {
	case anneal.SignalStarProximity, anneal.SignalCollisionRisk:
		return zapcore.DebugLevel
	case anneal.SignalLowEnergy, anneal.SignalRepairExhausted, anneal.SignalDegenerate:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

var messages = map[anneal.SignalKind]string{
	anneal.SignalLowEnergy:        "panel energy low",
	anneal.SignalStarProximity:    "candidate inside star exclusion zone",
	anneal.SignalCollisionRisk:    "candidate too close to neighbour",
	anneal.SignalRepairExhausted:  "separation repair gave up",
	anneal.SignalDegenerate:       "degenerate energy evaluation",
	anneal.SignalOverheatStart:    "panel overheating",
	anneal.SignalCooling:          "panel cooling down",
	anneal.SignalOverheatResolved: "panel cooled",
}

type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) OnSignal(s anneal.Signal) {
	ce := o.log.Check(Level(s.Kind), messages[s.Kind])
	if ce == nil {
		return
	}
	ce.Write(
		zap.Stringer("signal", s.Kind),
		zap.Int("round", s.Round),
		zap.Int("panel", s.Panel),
		zap.Int("trial", s.Trial),
		zap.Stringer("position", s.Position),
		zap.Float64("value", s.Value),
	)
}

// Counter tallies signals by kind. Safe for use from concurrent runs.
type Counter struct {
	counts [anneal.NumSignalKinds]atomic.Int64
}

func (c *Counter) OnSignal(s anneal.Signal) {
	if int(s.Kind) < 0 || int(s.Kind) >= len(c.counts) {
		return
	}
	c.counts[s.Kind].Add(1)
}

func (c *Counter) Count(k anneal.SignalKind) int64 {
	if int(k) < 0 || int(k) >= len(c.counts) {
		return 0
	}
	return c.counts[k].Load()
}

// Snapshot returns the non-zero counts keyed by signal name.
func (c *Counter) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	for _, k := range anneal.SignalKinds() {
		if n := c.Count(k); n > 0 {
			out[k.String()] = n
		}
	}
	return out
}

// ThermalTracker records the thermal states each panel passes through.
// Call Reset between rounds to keep only the latest round.
type ThermalTracker struct {
	mu      sync.Mutex
	history map[int][]swarm.ThermalStatus
}

func NewThermalTracker() *ThermalTracker {
	return &ThermalTracker{history: make(map[int][]swarm.ThermalStatus)}
}

func (t *ThermalTracker) OnSignal(s anneal.Signal) {
	status, ok := s.Status()
	if !ok {
		return
	}
	t.mu.Lock()
	t.history[s.Panel] = append(t.history[s.Panel], status)
	t.mu.Unlock()
}

// History returns the states panel i entered since the last Reset.
func (t *ThermalTracker) History(i int) []swarm.ThermalStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]swarm.ThermalStatus(nil), t.history[i]...)
}

// Cooled reports whether panel i went through a cooling excursion.
func (t *ThermalTracker) Cooled(i int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.history[i] {
		if s == swarm.Cooling {
			return true
		}
	}
	return false
}

func (t *ThermalTracker) Reset() {
	t.mu.Lock()
	clear(t.history)
	t.mu.Unlock()
}

// RoundLogger logs one line per completed round.
type RoundLogger struct {
	log *zap.Logger
}

func NewRoundLogger(log *zap.Logger) *RoundLogger {
	return &RoundLogger{log: log}
}

func (r *RoundLogger) OnRound(sw *swarm.Swarm, body *swarm.CentralBody, st sim.RoundStats) {
	r.log.Info("round complete",
		zap.String("swarm", sw.Name),
		zap.Int("round", st.Round),
		zap.Float64("energy", st.Energy),
		zap.Float64("min_separation", st.MinSeparation),
		zap.Float64("clearance", st.Clearance),
		zap.Float64("max_temperature", st.MaxTemperature),
		zap.Float64("acceptance", st.Stats.AcceptanceRate()),
		zap.Int("overheats", st.Stats.Overheats),
	)
}
