package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/skybridge/skybridge/pkg/cloud"
	"github.com/skybridge/skybridge/pkg/config"
	"github.com/skybridge/skybridge/pkg/providers"
	"github.com/skybridge/skybridge/pkg/telemetry"

	// Registered provider backends.
	_ "github.com/skybridge/skybridge/pkg/providers/local"
)

var (
	// Global flags
	configPath string
	verbose    bool
	jsonOutput bool

	// tel is the process-wide telemetry, built by openProvider from the
	// loaded configuration and shared with the provider backend.
	tel *telemetry.Telemetry
)

// Execute runs the root command and flushes pending spans afterwards.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	err := rootCmd.ExecuteContext(ctx)
	if tel != nil {
		_ = tel.Shutdown(context.Background())
	}
	return err
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sky",
		Short: "Skybridge - provider-agnostic cloud resource management",
		Long: `Skybridge manages compute, block storage, and security resources through
a single provider-agnostic interface.

Features:
  - One API surface across providers
  - Polling waits for asynchronous resource lifecycles
  - Lazy iteration over marker-paginated inventories
  - Validated launch configurations for instance provisioning
  - A SQLite-backed local provider for development and testing`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	}

	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")

	// Add subcommands
	rootCmd.AddCommand(newProvidersCommand())
	rootCmd.AddCommand(newInstanceCommand())
	rootCmd.AddCommand(newVolumeCommand())
	rootCmd.AddCommand(newSnapshotCommand())
	rootCmd.AddCommand(newImageCommand())
	rootCmd.AddCommand(newKeyPairCommand())

	return rootCmd
}

// loadConfig loads the configuration file, applies the global flags, and
// configures the process logger from the logging section.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := applyLogging(&cfg.Logging); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyLogging points the global zerolog logger at the configured level and
// format. Console output goes to stderr so JSON results stay clean on stdout.
func applyLogging(cfg *config.LoggingConfig) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	return nil
}

// telemetryConfig maps the file configuration onto the telemetry stack.
func telemetryConfig(cfg *config.Config) *telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.Logging.Level = cfg.Logging.Level
	tc.Logging.Format = cfg.Logging.Format
	tc.Tracing.Enabled = cfg.Tracing.Enabled
	if cfg.Tracing.Exporter != "" {
		tc.Tracing.Exporter = cfg.Tracing.Exporter
	}
	tc.Tracing.Endpoint = cfg.Tracing.Endpoint
	if cfg.Tracing.SamplingRate > 0 {
		tc.Tracing.SamplingRate = cfg.Tracing.SamplingRate
	}
	tc.Metrics.Enabled = cfg.Metrics.Enabled
	if cfg.Metrics.ListenAddress != "" {
		tc.Metrics.ListenAddress = cfg.Metrics.ListenAddress
	}
	return tc
}

// openProvider builds the telemetry stack and the configured provider.
// The caller owns Close on the provider.
func openProvider(ctx context.Context) (*config.Config, cloud.Provider, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	tel, err = telemetry.NewTelemetry(telemetryConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	if err := tel.StartMetricsServer(); err != nil {
		return nil, nil, err
	}

	p, err := providers.New(ctx, cfg.Provider, cfg, tel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

// waitOptions builds wait options from the configured poll budget.
func waitOptions(cfg *config.Config, target, terminal []cloud.State) cloud.WaitOptions {
	return cloud.WaitOptions{
		TargetStates:   target,
		TerminalStates: terminal,
		Timeout:        cfg.WaitTimeout.Std(),
		Interval:       cfg.WaitInterval.Std(),
	}
}

// countingResource counts the refresh polls a wait performs.
type countingResource struct {
	cloud.StatefulResource
	polls int
}

func (c *countingResource) Refresh(ctx context.Context) error {
	c.polls++
	return c.StatefulResource.Refresh(ctx)
}

// waitOutcome maps a wait error onto the metric outcome labels.
func waitOutcome(err error) string {
	switch {
	case err == nil:
		return telemetry.WaitOutcomeSuccess
	case cloud.IsTerminalState(err):
		return telemetry.WaitOutcomeTerminalState
	case cloud.IsWaitTimeout(err):
		return telemetry.WaitOutcomeTimeout
	default:
		return telemetry.WaitOutcomeRefreshError
	}
}

// waitForResource polls the resource toward the target states, recording the
// wait in a span and in the wait metric families.
func waitForResource(ctx context.Context, cfg *config.Config, resourceType string, res cloud.StatefulResource, target, terminal []cloud.State) error {
	ctx, span := tel.Tracer.StartWaitSpan(ctx, resourceType, res.ID())
	defer span.End()

	tel.Metrics.RecordWaitStarted(resourceType)
	timer := telemetry.NewTimer()
	counted := &countingResource{StatefulResource: res}

	err := cloud.WaitFor(ctx, counted, waitOptions(cfg, target, terminal))

	tel.Metrics.RecordWaitCompleted(resourceType, waitOutcome(err), timer.Duration())
	tel.Metrics.RecordWaitPolls(resourceType, counted.polls)
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.RecordSuccess(span)
	return nil
}

// collectAll walks every page of the source inside a list span.
func collectAll[T any](ctx context.Context, providerName, service string, src cloud.PageSource[T]) ([]T, error) {
	ctx, span := tel.Tracer.StartListSpan(ctx, providerName, service)
	defer span.End()

	items, err := cloud.CollectAll[T](ctx, src)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	span.SetAttributes(telemetry.AttrPageItems.Int(len(items)))
	telemetry.RecordSuccess(span)
	return items, nil
}
