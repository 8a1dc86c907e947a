package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"triage-advisor/internal/config"
	"triage-advisor/internal/core"
	"triage-advisor/internal/llm"
)

var (
	// Global flags
	verbose bool
	envFile string

	cfg    *config.Config
	logger *zap.Logger
)

// errReported signals that the failure was already printed for the user.
var errReported = errors.New("reported")

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "AI clinical triage advisor",
	Long: `triage asks a hosted language model for a structured urgency assessment
(Low, Moderate, High or Emergency) of a patient's symptoms.

This tool is for educational use only. Always consult a medical professional.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(envFile)
		if err != nil {
			return err
		}
		logger, err = newLogger(cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Optional dotenv file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(examplesCmd)
}

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.  The
// logger is flushed on every path, including failed commands.
func run() int {
	err := rootCmd.Execute()
	syncLogger()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		return 1
	}
	return 0
}

var syncLogger = func() {
	if logger != nil {
		_ = logger.Sync()
	}
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

// newTriageService wires the configured model endpoint.  Without an API key
// no client is built and every evaluation reports the missing key.
func newTriageService(c *config.Config, log *zap.Logger) *core.TriageService {
	var completer llm.Completer
	if c.APIKey != "" {
		completer = llm.NewOpenAIClient(c.APIKey, c.BaseURL, c.Timeout)
	}
	return core.NewTriageService(completer, c.Settings(), log)
}
