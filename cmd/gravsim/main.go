package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/config"
	"github.com/san-kum/gravsim/internal/experiment"
	"github.com/san-kum/gravsim/internal/storage"
	"github.com/san-kum/gravsim/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	algorithm  string
	blockSize  int
	progress   bool
	summary    bool
	record     bool
	diagnose   bool
	metaPath   string

	log = logrus.New()
)

// exitError carries a process exit code other than 1.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Commands take their cancellation from
// the context passed to ExecuteContext.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gravsim",
		Short:         "direct-sum n-body gravity simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogger(logLevel)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gravsim", "data directory for recorded runs")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")

	runCmd := &cobra.Command{
		Use:   "run time-step total-time outputs-per-body input.npy output.npy [num-threads]",
		Short: "simulate the bodies in input.npy and write sampled positions to output.npy",
		Args:  cobra.RangeArgs(5, 6),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&algorithm, "algorithm", "", "force algorithm (direct, symmetric)")
	runCmd.Flags().IntVar(&blockSize, "block-size", 0, "bodies per storage block (0 = default)")
	runCmd.Flags().BoolVar(&progress, "progress", false, "show a live progress view")
	runCmd.Flags().BoolVar(&summary, "summary", false, "print a run summary")
	runCmd.Flags().BoolVar(&record, "record", false, "also record the run in the data directory")
	runCmd.Flags().StringVar(&metaPath, "metadata", "", "write run metadata (json) to this path")
	runCmd.Flags().BoolVar(&diagnose, "diagnostics", false, "also compute momentum and energy drift")

	hostCmd := &cobra.Command{
		Use:   "host",
		Short: "describe the processor and default worker count",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(compute.Describe())
			fmt.Printf("default workers: %d\n", compute.DefaultWorkers())
		},
	}

	rootCmd.AddCommand(runCmd, hostCmd, generateCmd(), compareCmd(), plotCmd(), analyzeCmd(),
		lyapunovCmd(), exportCSVCmd(), exportSVGCmd(), benchCmd(), presetsCmd(), listCmd(),
		scenarioCmd(), sweepCmd(), monteCarloCmd(), tuneCmd())
	return rootCmd
}

func setupLogger(level string) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if level == "" {
		return nil
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetLevel(lvl)
	return nil
}

// loadConfig applies defaults, then the preset, then the config file.
// Command line flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		fileCfg, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = fileCfg
	}

	if !cmd.Flags().Changed("log-level") {
		log.SetLevel(cfg.Level())
	}
	return cfg, nil
}

// parseTimeArgs reads time-step, total-time and outputs-per-body.
func parseTimeArgs(args []string, cfg *config.Config) error {
	dt, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("time-step: %w", err)
	}
	total, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("total-time: %w", err)
	}
	outputs, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("outputs-per-body: %w", err)
	}
	cfg.Dt, cfg.Duration, cfg.Outputs = dt, total, outputs
	return nil
}

func parseThreads(arg string) (int, error) {
	threads, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("num-threads: %w", err)
	}
	if threads < 1 {
		return 0, fmt.Errorf("num-threads must be >= 1, got %d", threads)
	}
	return threads, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := parseTimeArgs(args[:3], cfg); err != nil {
		return err
	}
	if len(args) == 6 {
		if cfg.Threads, err = parseThreads(args[5]); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("algorithm") {
		cfg.Algorithm = algorithm
	}
	if cmd.Flags().Changed("block-size") {
		cfg.BlockSize = blockSize
	}
	if cmd.Flags().Changed("diagnostics") {
		cfg.Diagnostics = diagnose
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	input, output := args[3], args[4]

	table, err := storage.LoadInput(input)
	if err != nil {
		return err
	}

	exp := experiment.New(cfg, log.WithField("input", input))
	if err := exp.Setup(table); err != nil {
		return err
	}

	ctx := cmd.Context()
	var report *experiment.Report
	if progress {
		err = viz.RunWithProgress(ctx, os.Stderr, cfg.Algorithm, exp.Plan().LastStep(),
			func(ctx context.Context, r *viz.Reporter) error {
				exp.Simulator().AddObserver(r)
				var err error
				report, err = exp.Run(ctx)
				return err
			})
	} else {
		report, err = exp.Run(ctx)
	}
	if err != nil {
		return err
	}

	if err := storage.SaveOutput(output, report.Output); err != nil {
		return err
	}

	fmt.Printf("%f secs\n", report.Elapsed.Seconds())
	if summary {
		fmt.Println(viz.Summary(report))
	}

	meta := exp.Metadata(report, input)
	if metaPath != "" {
		if err := storage.SaveMetadata(metaPath, meta); err != nil {
			return err
		}
	}
	if record {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(meta, report.Output)
		if err != nil {
			return err
		}
		log.WithField("run", runID).Info("run recorded")
	}
	return nil
}
