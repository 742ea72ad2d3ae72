package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/orbitsim/internal/analysis"
	"github.com/san-kum/orbitsim/internal/config"
	"github.com/san-kum/orbitsim/internal/export"
	"github.com/san-kum/orbitsim/internal/metrics"
	"github.com/san-kum/orbitsim/internal/orbit"
	"github.com/san-kum/orbitsim/internal/server"
	"github.com/san-kum/orbitsim/internal/sim"
	"github.com/san-kum/orbitsim/internal/storage"
	"github.com/san-kum/orbitsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	dt         float64
	duration   float64
	warp       float64
	stepper    string
	configFile string
	frameRate  int
	addr       string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "orbitsim",
		Short: "gravitational n-body simulation lab",
		RunE: func(cmd *cobra.Command, args []string) error {
			// default to the live view of the earth-moon system
			cfg := config.GetPreset("earth-moon")
			return viz.Run("earth-moon", cfg.System, cfg.Warp)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".orbitsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [system]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep (real seconds per frame)")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration (real seconds)")
	runCmd.Flags().Float64Var(&warp, "warp", config.DefaultWarp, "time warp factor")
	runCmd.Flags().StringVar(&stepper, "stepper", "frozen", "integration stepper (frozen, coupled)")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	liveCmd := &cobra.Command{
		Use:   "live [system]",
		Short: "run simulation with live visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().Float64Var(&warp, "warp", config.DefaultWarp, "time warp factor")
	liveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [file]",
		Short: "render run trajectories to SVG",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportSVG,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "estimate orbital periods",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available system presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("  %-12s %d bodies, scale %.0f\n", name, len(cfg.System.Bodies), cfg.System.Scale)
			}
			return nil
		},
	}

	compareCmd := &cobra.Command{
		Use:   "compare [system] [stepper1] [stepper2] ...",
		Short: "compare steppers on the same system",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareSteppers,
	}
	compareCmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	compareCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")

	benchCmd := &cobra.Command{
		Use:   "bench [system]",
		Short: "benchmark system",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchSystem,
	}

	serveCmd := &cobra.Command{
		Use:   "serve [system]",
		Short: "stream simulation frames over websocket",
		Args:  cobra.MaximumNArgs(1),
		RunE:  serveSystem,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	serveCmd.Flags().Float64Var(&warp, "warp", config.DefaultWarp, "time warp factor")
	serveCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, analyzeCmd, presetsCmd, compareCmd, benchCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig merges preset, config file, and flags. A positional system
// name selects a preset; --config overrides it; changed flags win over both.
func resolveConfig(cmd *cobra.Command, args []string) (string, *config.Config, error) {
	name := "earth-moon"
	if len(args) > 0 {
		name = args[0]
	}

	var cfg *config.Config
	if preset := config.GetPreset(name); preset != nil {
		// copy so flag overrides never touch the shared preset table
		c := *preset
		cfg = &c
	} else if configFile == "" {
		return "", nil, fmt.Errorf("unknown system: %s (available: %v)", name, config.ListPresets())
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return "", nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.System.Name != "" {
			name = cfg.System.Name
		}
	}

	if cmd.Flags().Lookup("dt") != nil && cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Lookup("time") != nil && cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Lookup("warp") != nil && cmd.Flags().Changed("warp") {
		cfg.Warp.Factor = warp
	}
	if cmd.Flags().Lookup("stepper") != nil && cmd.Flags().Changed("stepper") {
		cfg.Stepper = stepper
	}

	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}
	return name, cfg, nil
}

func newEngine(cfg *config.Config) (*sim.Engine, error) {
	system, err := orbit.FromConfig(cfg.System)
	if err != nil {
		return nil, err
	}
	if cfg.Stepper != "" {
		st, err := orbit.NewStepper(cfg.Stepper)
		if err != nil {
			return nil, err
		}
		system.SetStepper(st)
	}

	engine := sim.New(system, cfg.Warp)
	engine.AddMetric(metrics.NewEnergyDrift())
	engine.AddMetric(metrics.NewMomentumDrift())
	engine.AddMetric(metrics.NewMeanEnergy())
	return engine, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("running %s...\n", name)
	start := time.Now()

	result, err := engine.Run(context.Background(), sim.Config{
		Dt:            cfg.Dt,
		Duration:      cfg.Duration,
		ValidateState: true,
	})
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	stepperName := cfg.Stepper
	if stepperName == "" {
		stepperName = "frozen"
	}
	runID, err := st.Save(name, cfg.Dt, cfg.Duration, engine.Warp(), stepperName, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}
	fmt.Println("\nmetrics:")
	for mname, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", mname, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}
	return viz.Run(name, cfg.System, cfg.Warp)
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
	fmt.Fprintln(w, "ID\tSYSTEM\tTIME\tDURATION\tDT\tWARP\tSTEPPER\tBODIES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%.2f\t%s\t%d\n",
			run.ID,
			run.System,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Warp,
			run.Stepper,
			len(run.Bodies),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("system: %s\n", meta.System)
	fmt.Printf("samples: %d\n\n", len(states))

	// one chart per body: distance from origin over time
	for bi, name := range meta.Bodies {
		base := bi * 6
		if base+2 >= len(states[0]) {
			break
		}
		data := make([]float64, len(states))
		for i := range states {
			x, y, z := states[i][base], states[i][base+1], states[i][base+2]
			data[i] = math.Sqrt(x*x + y*y + z*z)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("%s distance from origin", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for _, name := range meta.Bodies {
		for _, c := range []string{"x", "y", "z", "vx", "vy", "vz"} {
			header = append(header, name+"_"+c)
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{
		BodyNames:  meta.Bodies,
		States:     states,
		Times:      times,
		Metrics:    meta.Metrics,
		StepsTaken: len(states) - 1,
	}

	return storage.WriteJSON(os.Stdout, meta.System, meta.Stepper, meta.Dt, meta.Duration, meta.Warp, result)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	result := &sim.Result{BodyNames: meta.Bodies, States: states, Times: times}

	out := args[0] + ".svg"
	if len(args) > 1 {
		out = args[1]
	}
	if err := export.WriteTrajectorySVG(out, result, 800, 600); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}
	if len(states) < 4 || len(times) < 2 {
		return fmt.Errorf("not enough data to analyze")
	}

	sampleDt := times[1] - times[0]

	fmt.Printf("period analysis: %s\n", meta.ID)
	fmt.Printf("system: %s\n\n", meta.System)

	for bi, name := range meta.Bodies {
		base := bi * 6
		if base >= len(states[0]) {
			break
		}
		data := make([]float64, len(states))
		for i := range states {
			data[i] = states[i][base]
		}

		period := analysis.DominantPeriod(data, sampleDt)
		if period == 0 {
			fmt.Printf("  %-12s no periodicity detected\n", name)
			continue
		}
		fmt.Printf("  %-12s period %.4g s (%.2f days)\n", name, period, period/86400)
	}

	ps := analysis.PowerSpectrum(centered(states))
	graph := asciigraph.Plot(ps[:len(ps)/4],
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("power spectrum (first body, x)"),
	)
	fmt.Println()
	fmt.Println(graph)
	return nil
}

// centered extracts the first body's x series with the mean removed, for
// the spectrum chart.
func centered(states [][]float64) []float64 {
	data := make([]float64, len(states))
	mean := 0.0
	for i := range states {
		data[i] = states[i][0]
		mean += data[i]
	}
	mean /= float64(len(data))
	for i := range data {
		data[i] -= mean
	}
	return data
}

func compareSteppers(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}
	steppers := args[1:]

	fmt.Printf("comparing steppers for %s (dt=%.4f, duration=%.1fs)\n\n", name, cfg.Dt, cfg.Duration)
	fmt.Printf("%-10s  %-14s  %-14s  %-10s\n", "stepper", "energy_drift", "momentum_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 56))

	for _, stName := range steppers {
		stCfg := *cfg
		stCfg.Stepper = stName

		engine, err := newEngine(&stCfg)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", stName, err)
			continue
		}

		start := time.Now()
		result, err := engine.Run(context.Background(), sim.Config{Dt: stCfg.Dt, Duration: stCfg.Duration})
		elapsed := time.Since(start)
		if err != nil {
			fmt.Printf("%-10s  error: %v\n", stName, err)
			continue
		}

		fmt.Printf("%-10s  %14.4e  %14.4e  %10.2f\n",
			stName,
			result.Metrics["energy_drift"],
			result.Metrics["momentum_drift"],
			float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func benchSystem(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{0.001, 0.01, 0.1}

	fmt.Printf("benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			engine, err := newEngine(cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := engine.Run(context.Background(), sim.Config{Dt: step, Duration: dur})
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()
			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func serveSystem(cmd *cobra.Command, args []string) error {
	name, cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("streaming %s on %s/ws (%d fps)\n", name, addr, frameRate)
	return server.New(engine, frameRate).Run(ctx, addr)
}
