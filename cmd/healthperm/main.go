package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/config"
	"github.com/sambigeara/healthperm/pkg/grantfile"
	"github.com/sambigeara/healthperm/pkg/observability/logging"
	"github.com/sambigeara/healthperm/pkg/observability/metrics"
	"github.com/sambigeara/healthperm/pkg/observability/tracing"
	"github.com/sambigeara/healthperm/pkg/perm"
	"github.com/sambigeara/healthperm/pkg/session"
	"github.com/sambigeara/healthperm/pkg/workspace"
)

const shutdownTimeout = 5 * time.Second

func main() {
	defaultDir, err := workspace.DefaultDir()
	if err != nil {
		log.Fatal(err)
	}

	rootCmd := &cobra.Command{
		Use:   "healthperm",
		Short: "Review and change an app's access to health data",
	}
	rootCmd.PersistentFlags().String("dir", defaultDir, "Directory holding config, catalog and grants")
	rootCmd.PersistentFlags().String("catalog", "", "Permission catalog for the app (overrides config)")
	rootCmd.PersistentFlags().String("grants", "", "Grants file (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (overrides config)")
	rootCmd.PersistentFlags().Bool("metrics", false, "Print toggle and commit counters on exit")

	rootCmd.AddCommand(
		newScreenCmd(),
		newStatusCmd(),
		newGrantCmd("grant", true),
		newGrantCmd("revoke", false),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Failed to execute command: %q", err)
	}
}

// env is what every subcommand needs: resolved config plus the
// observability stack.
type env struct {
	cfg         *config.Config
	tracer      *sdktrace.TracerProvider
	collector   *metrics.Collector
	instruments *metrics.Instruments
	dumpMetrics bool
}

func newEnv(cmd *cobra.Command) (*env, error) {
	dir, _ := cmd.Flags().GetString("dir")
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	perm.UseGroup(cfg.SharingGroup())
	if err := workspace.EnsureDir(dir); err != nil {
		return nil, err
	}
	created, err := config.Init(dir)
	if err != nil {
		return nil, err
	}
	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog = v
	}
	if v, _ := cmd.Flags().GetString("grants"); v != "" {
		cfg.GrantsFile = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}

	if err := logging.Init(cfg.LogLevel); err != nil {
		return nil, err
	}
	if created {
		zap.S().Infow("wrote default config", "dir", dir)
	}
	tp := tracing.NewProvider()
	otel.SetTracerProvider(tp)

	collector := metrics.NewCollector()
	instruments, err := metrics.New(collector.Provider)
	if err != nil {
		return nil, err
	}
	dump, _ := cmd.Flags().GetBool("metrics")

	return &env{cfg: cfg, tracer: tp, collector: collector, instruments: instruments, dumpMetrics: dump}, nil
}

func (e *env) sessionConfig(report grantfile.Reporter) session.Config {
	return session.Config{
		GrantsPath: e.cfg.GrantsFile,
		Metrics:    e.instruments,
		Reporter:   report,
	}
}

// close prints counters if requested and shuts the providers down.
func (e *env) close(w io.Writer) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if e.dumpMetrics {
		counters, err := e.collector.Counters(ctx)
		if err != nil {
			fmt.Fprintln(w, err)
		}
		for _, k := range metrics.Keys(counters) {
			fmt.Fprintf(w, "%s %d\n", k, counters[k])
		}
	}
	_ = e.collector.Shutdown(ctx)
	_ = e.tracer.Shutdown(ctx)
}
