package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/snowflakes/internal/config"
	"github.com/san-kum/snowflakes/internal/frame"
	"github.com/san-kum/snowflakes/internal/grab"
	"github.com/san-kum/snowflakes/internal/render"
	"github.com/san-kum/snowflakes/internal/scene"
	"github.com/san-kum/snowflakes/internal/storage"
	"github.com/san-kum/snowflakes/internal/tui"
	"github.com/san-kum/snowflakes/internal/viz"
	"github.com/san-kum/snowflakes/internal/vr"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	mock       bool
	frames     int
	fixedDt    float64
	stateFile  string
	scriptName string
	exportFile string
	watch      bool
	frameRate  int
	watchRate  int
	maxPlots   int
)

func main() {
	log.SetPrefix("[SNOWFLAKES] ")

	rootCmd := &cobra.Command{
		Use:   "snowflakes",
		Short: "build snowmen out of grabbable snow blocks",
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".snowflakes", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a session and record it",
		Args:  cobra.NoArgs,
		RunE:  runSession,
	}
	addSessionFlags(runCmd)
	runCmd.Flags().StringVar(&exportFile, "export", "", "also write the recording as JSON to this file")
	runCmd.Flags().BoolVar(&watch, "watch", false, "print a side view while running")
	runCmd.Flags().IntVar(&watchRate, "watch-fps", 30, "watch redraw rate")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a session in the interactive terminal view",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSessionFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 90, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot object heights of a recorded run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&maxPlots, "max", 6, "maximum number of objects to plot")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets and mock scripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				cfg := config.Presets[p]
				fmt.Printf("  %-10s apps=%v script=%s\n", p, cfg.Apps, cfg.Script)
			}
			fmt.Println("scripts:")
			for _, s := range vr.ListScripts() {
				fmt.Printf("  %-10s %d frames\n", s, vr.Scripts[s].TotalFrames())
			}
			return nil
		},
	}

	stateCmd := &cobra.Command{
		Use:   "state",
		Short: "inspect persisted application state",
	}
	stateCmd.AddCommand(&cobra.Command{
		Use:   "show [file]",
		Short: "show a saved hammer state",
		Args:  cobra.ExactArgs(1),
		RunE:  showState,
	})

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, presetsCmd, stateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addSessionFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&mock, "mock", "m", false, "use the scripted mock device")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().IntVar(&frames, "frames", 0, "stop after this many frames (0 = until exit)")
	cmd.Flags().Float64Var(&fixedDt, "fixed-dt", 0, "fixed frame time in seconds (0 = wall clock)")
	cmd.Flags().StringVar(&stateFile, "state", "", "hammer state file")
	cmd.Flags().StringVar(&scriptName, "script", "", "mock script name or yaml path")
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	s, err := newSession(cfg, true, nil, log.Default())
	if err != nil {
		return err
	}
	if watch {
		r := tui.NewLiveRenderer(os.Stdout, watchRate)
		s.loop.AddObserver(r)
		r.Start()
		defer r.Stop()
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %v (script %s)...\n", cfg.Apps, s.scriptName())
	start := time.Now()
	result, err := s.loop.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("session failed: %v", err)
		return err
	}
	elapsed := time.Since(start)

	if err := s.saveState(); err != nil {
		log.Printf("warn: %v", err)
	}

	meta := s.metadata()
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	if exportFile != "" {
		if err := exportRun(exportFile, meta, result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d (skipped %d, warnings %d)\n", result.Frames, result.Skipped, result.Warnings)
	fmt.Printf("events: spawned=%d grabbed=%d released=%d recovered=%d\n",
		result.Events.Spawned, result.Events.Grabbed, result.Events.Released, result.Events.Recovered)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func exportRun(path string, meta storage.RunMetadata, result *frame.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(f, meta, result); err != nil {
		f.Close()
		return fmt.Errorf("export %s: %w", path, err)
	}
	return f.Close()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	// Log lines would tear the alternate screen.
	logger := log.New(io.Discard, "", 0)
	if err := os.MkdirAll(dataDir, 0755); err == nil {
		if f, err := tea.LogToFile(filepath.Join(dataDir, "live.log"), "[SNOWFLAKES]"); err == nil {
			defer f.Close()
			logger = log.Default()
		}
	}
	wire := viz.NewWireframe(60, 20, viz.DefaultCamera())
	s, err := newSession(cfg, false, wire, logger)
	if err != nil {
		return err
	}
	if err := s.loop.Start(); err != nil {
		return err
	}
	defer func() {
		if err := s.loop.Stop(); err != nil {
			log.Printf("warn: stop device: %v", err)
		}
	}()

	p := tea.NewProgram(viz.NewModel(s.loop, "snowflakes", frameRate).WithWireframe(wire), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	if err := s.saveState(); err != nil {
		log.Printf("warn: %v", err)
	}
	if m, ok := final.(viz.Model); ok && m.Err() != nil {
		log.Printf("session failed: %v", m.Err())
		return m.Err()
	}
	return nil
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
	fmt.Fprintln(w, "ID\tAPPS\tSCRIPT\tTIME\tFRAMES\tSKIPPED\tSPAWNED\tRELEASED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%v\t%s\t%s\t%d\t%d\t%d\t%d\n",
			run.ID,
			run.Apps,
			run.Script,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Skipped,
			run.Events.Spawned,
			run.Events.Released,
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
	rows, err := st.LoadTrajectories(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	type key struct {
		app   string
		index int
	}
	var objects []key
	seen := make(map[key]bool)
	for _, r := range rows {
		k := key{r.App, r.Index}
		if !seen[k] {
			seen[k] = true
			objects = append(objects, k)
		}
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("apps: %v\n", meta.Apps)
	fmt.Printf("objects: %d\n\n", len(objects))
	for i, k := range objects {
		if i >= maxPlots {
			fmt.Printf("(%d more objects not shown)\n", len(objects)-maxPlots)
			break
		}
		caption := fmt.Sprintf("%s %d height (m), held %d frames", k.app, k.index, storage.HeldFrames(rows, k.app, k.index))
		fmt.Println(viz.PlotHeights(storage.Heights(rows, k.app, k.index), caption))
	}
	return nil
}

func showState(cmd *cobra.Command, args []string) error {
	h, err := scene.NewHammer(&render.Placeholders{}, grab.NewMachine(grab.DefaultThreshold, grab.DefaultLaserRange), scene.DefaultHammer())
	if err != nil {
		return err
	}
	if err := storage.LoadState(args[0], h); err != nil {
		return err
	}
	body := h.Body()
	fmt.Printf("file: %s\n", args[0])
	fmt.Printf("location: %s\n", body.Pose)
	fmt.Printf("state: %s\n", h.State())
	fmt.Printf("mass: %.3f kg\n", body.Mass)
	return nil
}
