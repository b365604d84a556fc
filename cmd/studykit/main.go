package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/pbaille/studykit/internal/config"
	"github.com/pbaille/studykit/internal/domain"
	"github.com/pbaille/studykit/internal/logger"
	"github.com/pbaille/studykit/internal/store"
	"github.com/pbaille/studykit/internal/study"
	"github.com/spf13/cobra"
)

var (
	configFile string
	dataDir    string
	logLevel   string

	cfg       *config.Config
	appLogger *slog.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "studykit",
		Short:         "Study tools: GPA, homework, pomodoro and flashcards",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var opts []config.Option
			if configFile != "" {
				opts = append(opts, config.WithConfigFile(configFile))
			}
			if dataDir != "" {
				opts = append(opts, config.WithOverride("data_dir", dataDir))
			}
			if logLevel != "" {
				opts = append(opts, config.WithOverride("log.level", logLevel))
			}

			var err error
			cfg, err = config.Load(opts...)
			if err != nil {
				return err
			}
			appLogger = logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr)
			appLogger.Debug("configuration loaded",
				slog.String("data_dir", cfg.DataDir),
				slog.String("database_driver", cfg.Database.Driver))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: studykit.yaml in . or the data dir)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.studykit)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(gpaCmd())
	rootCmd.AddCommand(homeworkCmd())
	rootCmd.AddCommand(pomodoroCmd())
	rootCmd.AddCommand(deckCmd())
	rootCmd.AddCommand(cardsCmd())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func getKV() store.KV {
	return store.NewFileStore(cfg.DataDir)
}

func getService(ctx context.Context) (*study.Service, func() error, error) {
	db, err := store.Open(ctx, store.DBConfig{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		URL:    cfg.Database.URL,
	}, appLogger)
	if err != nil {
		return nil, nil, err
	}
	fs := store.NewFlashcardStore(db, appLogger)
	return study.NewService(fs, appLogger), fs.Close, nil
}

func describeError(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return "Invalid input: " + verr.Error()
	}
	return "Error: " + err.Error()
}

// truncate shortens s to at most max characters, never splitting one.
func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// parseIndex turns a 1-based position from the command line into an index.
func parseIndex(arg string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 0, domain.NewValidationError("index", fmt.Sprintf("%q is not a positive number", arg))
	}
	return n - 1, nil
}
