package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"siteinventory/internal/adapter"
	"siteinventory/internal/config"
	"siteinventory/internal/logger"
	"siteinventory/internal/service"
	"siteinventory/internal/watcher"
)

type rootOptions struct {
	configPath  string
	output      string
	unreachable string
	format      string
	backend     string
	timeout     time.Duration
	concurrency int
	deadline    time.Duration
	logLevels   []string
	logDir      string
	progress    bool
	watch       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "siteinventory [input.csv]",
		Short: "Build an Ansible inventory from a table of site endpoints",
		Long: `siteinventory reads a table of named sites, each with a primary and a
secondary address:port, probes the endpoints for TCP reachability and writes
an Ansible inventory grouped by site. Rows with no reachable endpoint are
written to a sidecar table next to the inventory.

The input defaults to ./hosts.csv; hosts.csv produces hosts.yml and
hosts_unreachable.csv.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, opts)
		},
	}

	f := cmd.Flags()
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search "+config.ConfigFileName+" and standard locations)")
	f.StringVarP(&opts.output, "output", "o", "", "inventory output path (default: <input>.yml)")
	f.StringVar(&opts.unreachable, "unreachable", "", "unreachable sidecar path (default: <input>_unreachable.csv)")
	f.StringVar(&opts.format, "format", "", "inventory format: yaml or json")
	f.StringVar(&opts.backend, "backend", "", "probe backend: nmap, tcp or ssh")
	f.DurationVar(&opts.timeout, "timeout", 0, "timeout for a single probe")
	f.IntVar(&opts.concurrency, "concurrency", 0, "number of rows probed in parallel")
	f.DurationVar(&opts.deadline, "deadline", 0, "bound on the whole probing phase (0 = none)")
	f.StringSliceVar(&opts.logLevels, "log-level", nil, "enabled log levels (repeatable): debug, info, warning, error, critical")
	f.StringVar(&opts.logDir, "log-dir", "", "directory for the daily log file")
	f.BoolVar(&opts.progress, "progress", false, "print each row outcome as it resolves")
	f.BoolVarP(&opts.watch, "watch", "w", false, "regenerate whenever the input table changes")

	cmd.AddCommand(newInitConfigCmd(opts))
	return cmd
}

func loadConfig(path string) (*config.Config, string, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// applyFlags overrides config values with the flags that were set
func applyFlags(cmd *cobra.Command, cfg *config.Config, opts *rootOptions) error {
	f := cmd.Flags()
	if f.Changed("output") {
		cfg.Output.Inventory = opts.output
	}
	if f.Changed("unreachable") {
		cfg.Output.Unreachable = opts.unreachable
	}
	if f.Changed("format") {
		cfg.Output.Format = opts.format
	}
	if f.Changed("backend") {
		cfg.Probe.Backend = opts.backend
	}
	if f.Changed("timeout") {
		cfg.Probe.Timeout = config.Duration(opts.timeout)
	}
	if f.Changed("concurrency") {
		cfg.Probe.Concurrency = opts.concurrency
	}
	if f.Changed("deadline") {
		cfg.Probe.Deadline = config.Duration(opts.deadline)
	}
	if f.Changed("log-level") {
		cfg.Log.Levels = opts.logLevels
	}
	if f.Changed("log-dir") {
		cfg.Log.Dir = opts.logDir
	}
	return cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string, opts *rootOptions) error {
	cfg, cfgPath, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if len(args) == 1 {
		cfg.Input.Path = args[0]
	}
	if err := applyFlags(cmd, cfg, opts); err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Name:    cfg.Log.Name,
		Levels:  cfg.Log.Levels,
		Dir:     cfg.Log.Dir,
		NoColor: cfg.Log.NoColor,
	})
	if err != nil {
		return err
	}
	defer log.Close()

	if cfgPath != "" {
		log.Info("config loaded", "path", cfgPath)
	}
	log.Debug("effective configuration", "summary", cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prober, backend, err := adapter.NewProber(ctx, adapter.Options{
		Backend: cfg.Probe.Backend,
		Timeout: cfg.Probe.Timeout.Duration(),
		Log:     log,
	})
	if err != nil {
		log.Critical("cannot create prober", "error", err)
		return err
	}
	log.Info("probing", "backend", backend, "timeout", cfg.Probe.Timeout.Duration(), "concurrency", cfg.Probe.Concurrency)

	pipeline := service.NewPipeline(cfg, prober, log)

	done := make(chan struct{})
	if opts.progress {
		events := make(chan service.Event, 100)
		pipeline.Events().Subscribe(events)
		go func() {
			defer close(done)
			for ev := range events {
				printProgress(cmd.ErrOrStderr(), ev)
			}
		}()
		defer func() {
			close(events)
			<-done
		}()
	}

	out := cmd.OutOrStdout()
	err = runOnce(ctx, out, pipeline, cfg.Input.Path)
	if err != nil {
		log.Critical("run failed", "error", err)
		if !opts.watch {
			return err
		}
	}
	if !opts.watch {
		return nil
	}

	return watcher.New(cfg.Input.Path, log).Watch(ctx, func(ctx context.Context) {
		if err := runOnce(ctx, out, pipeline, cfg.Input.Path); err != nil {
			log.Error("run failed, waiting for the next change", "error", err)
		}
	})
}

// runOnce runs the pipeline and prints the status lines
func runOnce(ctx context.Context, out io.Writer, pipeline *service.Pipeline, input string) error {
	result, err := pipeline.Run(ctx, input)
	if result != nil && result.InventoryPath != "" {
		fmt.Fprintf(out, "Inventory written to: %s\n", result.InventoryPath)
	}
	if err != nil {
		return err
	}

	if result.UnreachablePath != "" {
		fmt.Fprintf(out, "Unreachable IPs written to: %s\n", result.UnreachablePath)
	} else {
		fmt.Fprintln(out, "All hosts reachable and added.")
	}
	return nil
}

func printProgress(w io.Writer, ev service.Event) {
	outcome, ok := ev.Payload.(service.RowOutcome)
	if !ok {
		return
	}
	status := fmt.Sprintf("%s via %s (%s)", outcome.Group, outcome.Slot, outcome.Endpoint)
	if outcome.Endpoint == "" {
		status = fmt.Sprintf("%s: %s", outcome.Name, outcome.Reason)
	}
	fmt.Fprintf(w, "[%d/%d] line %d %s\n", outcome.Completed, outcome.Total, outcome.Line, status)
}
