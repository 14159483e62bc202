package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/hyperion/internal/config"
	"github.com/san-kum/hyperion/internal/experiment"
	"github.com/san-kum/hyperion/internal/export"
	"github.com/san-kum/hyperion/internal/sim"
	"github.com/san-kum/hyperion/internal/storage"
	"github.com/san-kum/hyperion/internal/sweep"
	"github.com/san-kum/hyperion/internal/swarm"
	"github.com/san-kum/hyperion/internal/telemetry"
	"github.com/san-kum/hyperion/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	logLevel   string
	logJSON    bool
	configFile string
	preset     string
	name       string
	sampler    string
	seed       int64
	rounds     int
	panels     int
	trials     int
	exclusion  float64
	bodyDt     float64
	// ensemble and sweep
	numRuns int
	workers int
	// sweep plan from flags
	param      string
	sweepMin   float64
	sweepMax   float64
	steps      int
	sweepSeeds int
	bestMetric string
	maximize   bool
	// export
	outFile    string
	svgSize    int
	energyPlot bool
	saveConfig string
)

var logger = zap.NewNop()

func main() {
	rootCmd := &cobra.Command{
		Use:          "hyperion",
		Short:        "swarm repositioning by simulated annealing",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := telemetry.NewLogger(logLevel, logJSON)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".hyperion", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log JSON lines instead of console output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run an annealing experiment and save it",
		Args:  cobra.NoArgs,
		RunE:  runExperiment,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the resolved config to this path")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a run summary and its final panels",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot per-round energy, separation and temperature",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the final panels of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render the final swarm or the energy curve as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 600, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&energyPlot, "energy", false, "plot energy per round instead of the swarm")

	deleteCmd := &cobra.Command{
		Use:   "rm [run_id]",
		Short: "delete a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).Delete(args[0])
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "watch the swarm reposition round by round",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "measure annealing throughput",
		Args:  cobra.NoArgs,
		RunE:  benchEngine,
	}
	addConfigFlags(benchCmd)

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run the same experiment over consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addConfigFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 8, "number of seeds")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (default GOMAXPROCS)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [plan.yaml]",
		Short: "sweep one engine parameter over a range",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&param, "param", "", "parameter to sweep ("+strings.Join(sweep.Params(), ", ")+")")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0, "last value")
	sweepCmd.Flags().IntVar(&steps, "steps", 5, "number of values")
	sweepCmd.Flags().IntVar(&sweepSeeds, "seeds", 1, "seeds per value")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent values (default GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&bestMetric, "best", "energy", "metric used to pick the best value")
	sweepCmd.Flags().BoolVar(&maximize, "maximize", false, "pick the largest metric instead of the smallest")

	rootCmd.AddCommand(runCmd, listCmd, showCmd, plotCmd, exportCmd, exportCSVCmd, exportSVGCmd, deleteCmd, liveCmd, presetsCmd, benchCmd, ensembleCmd, sweepCmd)

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&name, "name", "", "swarm name")
	cmd.Flags().StringVar(&sampler, "sampler", "", "initial layout (shell, hexagonal)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().IntVar(&rounds, "rounds", config.DefaultRounds, "outer rounds")
	cmd.Flags().IntVar(&panels, "panels", config.DefaultPanels, "number of panels")
	cmd.Flags().IntVar(&trials, "trials", 0, "annealing trials per panel per round")
	cmd.Flags().Float64Var(&exclusion, "star-exclusion", 0, "minimum distance to the central body")
	cmd.Flags().Float64Var(&bodyDt, "body-dt", 0, "central body time step per round")
}

// resolveConfig applies preset, then config file, then explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		cfg.Name = name
	}
	if flags.Changed("sampler") {
		cfg.Sampler = sampler
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("rounds") {
		cfg.Rounds = rounds
	}
	if flags.Changed("panels") {
		cfg.Panels = panels
	}
	if flags.Changed("trials") {
		cfg.Engine.Trials = trials
	}
	if flags.Changed("star-exclusion") {
		cfg.Engine.StarExclusion = exclusion
	}
	if flags.Changed("body-dt") {
		cfg.Body.Dt = bodyDt
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func interruptible() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runExperiment(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return err
		}
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	var counter telemetry.Counter
	exp := experiment.New(cfg, experiment.NewRegistry())
	exp.AddObserver(telemetry.NewLogObserver(logger))
	exp.AddObserver(&counter)
	if err := exp.Setup(); err != nil {
		return err
	}
	exp.GetSimulator().AddObserver(telemetry.NewRoundLogger(logger))

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("running %s: %d panels, %d rounds, seed %d...\n", cfg.Name, cfg.Panels, cfg.Rounds, cfg.Seed)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(storage.NewMetadata(cfg, preset), result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("trials: %d (%.1f%% accepted)\n\n", result.Stats.Trials, 100*result.Stats.AcceptanceRate())

	printPanels(os.Stdout, result.Swarm.Panels, cfg.Engine.OverheatThreshold)

	fmt.Println("\nmetrics:")
	printMetrics(os.Stdout, result.Metrics)

	if counts := counter.Snapshot(); len(counts) > 0 {
		fmt.Println("\nsignals:")
		keys := make([]string, 0, len(counts))
		for k := range counts {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %s: %d\n", k, counts[k])
		}
	}
	return nil
}

// printPanels writes the final report, one line per panel.
func printPanels(w io.Writer, ps []swarm.Panel, threshold float64) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PANEL\tPOSITION\tTEMP\tENERGY\tCONN\tTHRUSTER\tSTATUS")
	for i := range ps {
		p := &ps[i]
		fmt.Fprintf(tw, "%d\t%s\t%.1f\t%.1f\t%d\t%.2f\t%s\n",
			i,
			p.Position,
			p.Temperature,
			p.EnergyLevel,
			p.Connectivity,
			p.Thruster,
			p.ThermalStatus(threshold),
		)
	}
	tw.Flush()
}

func printMetrics(w io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for n := range metrics {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(w, "  %s: %.6f\n", n, metrics[n])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSAMPLER\tPANELS\tROUNDS\tSEED\tENERGY\tACCEPT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%.5f\t%.1f%%\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Sampler,
			run.Panels,
			run.Rounds,
			run.Seed,
			run.FinalEnergy,
			100*run.Stats.AcceptanceRate(),
		)
	}

	return w.Flush()
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00ffff"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	ps, err := st.LoadPanels(args[0])
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(meta.Name) + "\n")
	fmt.Fprintf(&b, "run       %s\n", meta.ID)
	if meta.Preset != "" {
		fmt.Fprintf(&b, "preset    %s\n", meta.Preset)
	}
	fmt.Fprintf(&b, "time      %s\n", meta.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&b, "sampler   %s (%d panels)\n", meta.Sampler, meta.Panels)
	fmt.Fprintf(&b, "rounds    %d (body dt %g)\n", meta.Rounds, meta.BodyDt)
	fmt.Fprintf(&b, "seed      %d\n", meta.Seed)
	fmt.Fprintf(&b, "trials    %d, %.1f%% accepted, %d repairs, %d overheats\n",
		meta.Stats.Trials, 100*meta.Stats.AcceptanceRate(), meta.Stats.Repairs, meta.Stats.Overheats)
	fmt.Fprintf(&b, "energy    %.6f", meta.FinalEnergy)
	fmt.Println(boxStyle.Render(b.String()))
	fmt.Println()

	printPanels(os.Stdout, ps, meta.Params.OverheatThreshold)
	if len(meta.Metrics) > 0 {
		fmt.Println("\nmetrics:")
		printMetrics(os.Stdout, meta.Metrics)
	}
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	rs, err := st.LoadRounds(runID)
	if err != nil {
		return err
	}

	if len(rs) < 2 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("rounds: %d\n\n", len(rs)-1)

	series := []struct {
		caption string
		value   func(sim.RoundStats) float64
	}{
		{"energy", func(r sim.RoundStats) float64 { return r.Energy }},
		{"min separation", func(r sim.RoundStats) float64 { return r.MinSeparation }},
		{"star clearance", func(r sim.RoundStats) float64 { return r.Clearance }},
		{"max temperature", func(r sim.RoundStats) float64 { return r.MaxTemperature }},
	}

	for _, s := range series {
		data := make([]float64, len(rs))
		for i := range rs {
			data[i] = s.value(rs[i])
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// output returns stdout unless -o names a file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportRun(cmd *cobra.Command, args []string) error {
	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	return storage.New(dataDir).ExportRun(w, args[0])
}

func exportCSV(cmd *cobra.Command, args []string) error {
	ps, err := storage.New(dataDir).LoadPanels(args[0])
	if err != nil {
		return err
	}

	out, err := output()
	if err != nil {
		return err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write([]string{"panel", "x", "y", "z", "temperature", "energy_level", "connectivity", "thruster"}); err != nil {
		return err
	}
	for i, p := range ps {
		rec := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.Position.X, 'f', 6, 64),
			strconv.FormatFloat(p.Position.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Position.Z, 'f', 6, 64),
			strconv.FormatFloat(p.Temperature, 'f', 3, 64),
			strconv.FormatFloat(p.EnergyLevel, 'f', 3, 64),
			strconv.Itoa(p.Connectivity),
			strconv.FormatFloat(p.Thruster, 'f', 3, 64),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var svg string
	if energyPlot {
		rs, err := st.LoadRounds(args[0])
		if err != nil {
			return err
		}
		energies := make([]float64, len(rs))
		for i := range rs {
			energies[i] = rs[i].Energy
		}
		svg = export.EnergySVG(energies, svgSize, svgSize/2, "#00ff88")
	} else {
		sw, body, err := st.LoadCheckpoint(args[0])
		if err != nil {
			return err
		}
		svg = export.SwarmSVG(sw, body.Position, meta.Params.StarExclusion, meta.Params.OverheatThreshold, svgSize)
	}
	if svg == "" {
		return fmt.Errorf("nothing to render for run %s", args[0])
	}

	w, err := output()
	if err != nil {
		return err
	}
	defer w.Close()
	_, err = io.WriteString(w, svg+"\n")
	return err
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	thermal := telemetry.NewThermalTracker()
	exp := experiment.New(cfg, experiment.NewRegistry())
	exp.AddObserver(thermal)
	if err := exp.Setup(); err != nil {
		return err
	}

	p := tea.NewProgram(viz.NewModel(exp, thermal), tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tSAMPLER\tPANELS\tROUNDS\tTRIALS\tBODY VELOCITY")
	for _, n := range config.ListPresets() {
		cfg := config.GetPreset(n)
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%v\n",
			n, cfg.Sampler, cfg.Panels, cfg.Rounds, cfg.Engine.Trials, cfg.Body.Velocity)
	}
	return w.Flush()
}

func benchEngine(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.NewRegistry())
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("benchmarking %d panels x %d rounds x %d trials...\n", cfg.Panels, cfg.Rounds, cfg.Engine.Trials)
	start := time.Now()
	result, err := exp.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Printf("time: %v\n", elapsed)
	fmt.Printf("trials: %d\n", result.Stats.Trials)
	if elapsed > 0 {
		fmt.Printf("trials/sec: %.0f\n", float64(result.Stats.Trials)/elapsed.Seconds())
		fmt.Printf("rounds/sec: %.1f\n", float64(result.RoundsTaken)/elapsed.Seconds())
	}
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	var counter telemetry.Counter
	ens := sim.NewEnsemble(experiment.Factory(cfg, experiment.NewRegistry(), telemetry.NewLogObserver(logger), &counter), numRuns, cfg.Seed)
	if workers > 0 {
		ens.SetLimit(workers)
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("running %d seeds from %d...\n", numRuns, cfg.Seed)
	start := time.Now()
	results, err := ens.Run(ctx, cfg.SimConfig())
	if err != nil {
		return err
	}

	sum := sim.Summarize(results)
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tENERGY\tMIN SEP\tCLEARANCE\tACCEPT\tOVERHEATS")
	final := make([]float64, len(results))
	for i, r := range results {
		f := r.Final()
		final[i] = f.Energy
		fmt.Fprintf(w, "%d\t%.6f\t%.3f\t%.3f\t%.1f%%\t%d\n",
			r.Seed, f.Energy, f.MinSeparation, f.Clearance, 100*r.Stats.AcceptanceRate(), r.Stats.Overheats)
	}
	w.Flush()

	fmt.Printf("\nenergy: mean %.6f, std %.6f, min %.6f, max %.6f\n", sum.MeanEnergy, sum.StdEnergy, sum.MinEnergy, sum.MaxEnergy)
	fmt.Printf("acceptance: %.1f%%, overheats: %d\n", 100*sum.MeanAcceptance, sum.Overheats)

	if len(final) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(final, asciigraph.Height(8), asciigraph.Width(60), asciigraph.Caption("final energy by seed")))
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	var plan *sweep.Plan
	if len(args) == 1 {
		p, err := sweep.Load(args[0])
		if err != nil {
			return err
		}
		plan = p
		if cmd.Flags().Changed("workers") {
			plan.Workers = workers
		}
	} else {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		plan = &sweep.Plan{
			Param:   param,
			Min:     sweepMin,
			Max:     sweepMax,
			Steps:   steps,
			Seeds:   sweepSeeds,
			Seed:    cfg.Seed,
			Workers: workers,
			Base:    cfg,
		}
	}

	ctx, cancel := interruptible()
	defer cancel()

	fmt.Printf("sweeping %s over %v...\n", plan.Param, plan.Values())
	points, err := sweep.Run(ctx, plan, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tENERGY\tSTD\tACCEPT\tOVERHEATS\tCLEARANCE\n", strings.ToUpper(plan.Param))
	for _, p := range points {
		fmt.Fprintf(w, "%g\t%.6f\t%.6f\t%.1f%%\t%d\t%.3f\n",
			p.Value, p.Energy, p.EnergyStd, 100*p.Acceptance, p.Overheats, p.Metrics["star_clearance"])
	}
	w.Flush()

	if best, ok := sweep.Best(points, bestMetric, maximize); ok {
		fmt.Printf("\nbest %s: %s = %g\n", bestMetric, plan.Param, best.Value)
	}
	return nil
}
