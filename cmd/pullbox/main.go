package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/prashanthellina/pullbox/internal/config"
	"github.com/prashanthellina/pullbox/internal/daemon"
	"github.com/prashanthellina/pullbox/internal/proc"
	"github.com/prashanthellina/pullbox/internal/utils"
	"github.com/prashanthellina/pullbox/internal/version"
)

// Log rotation caps, in megabytes and file count.
const (
	logMaxSizeMB  = 10
	logMaxBackups = 10
)

var rootCmd = &cobra.Command{
	Use:     "pullbox PATH SERVER",
	Short:   "Keep a directory continuously synced with a git repository on an ssh server",
	Args:    cobra.ExactArgs(2),
	Version: version.Detailed(),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(cmd, args)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, closeLogs, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLogs()
		slog.SetDefault(logger)

		// config is good, errors past this point are runtime failures
		cmd.SilenceUsage = true

		logger.Info("pullbox", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

		d, err := daemon.New(cfg, logger)
		if err != nil {
			return err
		}

		defer logger.Info("bye")
		if err := d.Start(cmd.Context()); err != nil {
			if proc.IsInterruption(err) {
				cmd.SilenceErrors = true
			}
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().String("log", config.DefaultLogFile, "log file location")
	rootCmd.Flags().String("log-level", config.DefaultLogLevel, "log level (debug|info|warn|error)")
	rootCmd.Flags().BoolP("quiet", "q", false, "do not log to stderr")
	rootCmd.Flags().String("lock-file", config.DefaultLockFile(), "single-instance lock file location")
	rootCmd.Flags().Duration("poll-interval", config.DefaultPollInterval, "minimum time between server pulls")
	rootCmd.Flags().String("http-addr", config.DefaultHTTPAddr, "local control plane API address")
	rootCmd.Flags().String("http-token", "", "local control plane API access token")
	rootCmd.Flags().Bool("no-http", false, "disable the local control plane API")
}

func main() {
	godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig assembles the daemon config from the positional arguments,
// flags and PULLBOX_* environment variables, flags winning.
func loadConfig(cmd *cobra.Command, args []string) *config.Config {
	viper.BindPFlag("log", cmd.Flags().Lookup("log"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("log-level"))
	viper.BindPFlag("quiet", cmd.Flags().Lookup("quiet"))
	viper.BindPFlag("lock_file", cmd.Flags().Lookup("lock-file"))
	viper.BindPFlag("poll_interval", cmd.Flags().Lookup("poll-interval"))
	viper.BindPFlag("http_addr", cmd.Flags().Lookup("http-addr"))
	viper.BindPFlag("http_token", cmd.Flags().Lookup("http-token"))
	viper.BindPFlag("no_http", cmd.Flags().Lookup("no-http"))

	viper.SetEnvPrefix("PULLBOX")
	viper.AutomaticEnv()

	return &config.Config{
		Path:         args[0],
		Server:       args[1],
		LogFile:      viper.GetString("log"),
		LogLevel:     viper.GetString("log_level"),
		Quiet:        viper.GetBool("quiet"),
		LockFile:     viper.GetString("lock_file"),
		PollInterval: viper.GetDuration("poll_interval"),
		HTTPEnabled:  !viper.GetBool("no_http"),
		HTTPAddr:     viper.GetString("http_addr"),
		HTTPToken:    viper.GetString("http_token"),
	}
}

// newLogger fans records out to the rotating log file and, unless quiet,
// a tinted stderr handler.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	fileWriter := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    logMaxSizeMB,
		MaxBackups: logMaxBackups,
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(fileWriter, &slog.HandlerOptions{Level: level}),
	}

	if !cfg.Quiet {
		handlers = append(handlers, tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}))
	}

	logger := slog.New(utils.NewMultiLogHandler(handlers...))
	return logger, func() { fileWriter.Close() }, nil
}
