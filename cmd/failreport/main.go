// Command failreport renders failure documents and demonstrates the failure
// handler in console, HTML and XML modes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/xgx-io/failreport/internal/config"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger *zap.Logger
	cfg    config.Config
)

// errExit carries a process exit status out of a command without printing.
type errExit struct{ code int }

func (e errExit) Error() string { return fmt.Sprintf("exit status %d", e.code) }

var rootCmd = &cobra.Command{
	Use:   "failreport",
	Short: "Render and demonstrate failure reports",
	Long: `failreport renders captured failures as console, HTML or XML reports.

Failures are read from YAML failure documents (see "render") or raised on
purpose through the failure handler (see "demo" and "serve").`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded",
			zap.String("mode", cfg.Mode),
			zap.String("log_dir", cfg.LogDir),
			zap.Bool("assertions", cfg.Assertions))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default "+config.FileName+")")

	rootCmd.AddCommand(renderCmd, demoCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var ee errExit
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
