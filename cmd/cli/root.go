// Package cli implements the riskscore command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/infrastructure/monitoring"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
)

type globalOptions struct {
	configFile string
	format     string
	outputDir  string
	logLevel   string
}

// NewRootCommand builds the riskscore command tree writing reports to out and diagnostics to errOut.
// NewRootCommand 构建 riskscore 命令树，报告写入 out，诊断信息写入 errOut。
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	opts := &globalOptions{}
	rootCmd := &cobra.Command{
		Use:   "riskscore",
		Short: "Score Azure security signal documents into composite risk reports.",
		Long: `riskscore turns a raw signal document collected from an Azure subscription
into a composite risk report with component scores, a 0-100 risk score,
a risk level and ranked risk drivers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./config.yaml or /etc/riskscore360/config.yaml)")
	flags.StringVarP(&opts.format, "format", "f", "", "report format: json or yaml (overrides output.format)")
	flags.StringVarP(&opts.outputDir, "output-dir", "o", "", "also write each report to this directory")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(
		newScoreCommand(opts),
		newBatchCommand(opts),
		newVersionCommand(),
	)
	return rootCmd
}

// Execute is the main entry point for the CLI application.
// Execute 是 CLI 应用程序的主入口点。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := NewRootCommand(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// load resolves the configuration and applies command-line overrides.
func (o *globalOptions) load() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile, nil)
	if err != nil {
		return nil, err
	}
	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.outputDir != "" {
		cfg.Output.Directory = o.outputDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	// Reports own stdout.
	if cfg.Log.OutputPath == "" || cfg.Log.OutputPath == "stdout" {
		cfg.Log.OutputPath = "stderr"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (logger.Logger, error) {
	zl, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	return zl.WithComponent("cli"), nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "riskscore %s (commit %s, report schema %s)\n",
				Version, GitCommit, constants.ReportSchemaVersion)
		},
	}
}
