package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perks-tracker/internal/common"
	"github.com/joseph-ayodele/perks-tracker/internal/core/perks"
	"github.com/joseph-ayodele/perks-tracker/internal/repository"
)

var (
	logger *slog.Logger
	cfg    *common.Config

	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "perkscan",
	Short:         "perkscan turns card-offer screenshots into perk candidates",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			if err := os.Setenv("PERKS_CONFIG", cfgFile); err != nil {
				return err
			}
		}
		if logLevel != "" {
			if err := os.Setenv("LOG_LEVEL", logLevel); err != nil {
				return err
			}
		}
		logger = common.NewLogger()
		slog.SetDefault(logger)

		c, err := common.LoadConfig()
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (overrides PERKS_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides LOG_LEVEL)")

	rootCmd.AddCommand(extractCmd, issuersCmd, scanCmd, watchCmd, exportCmd, purgeCmd, serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newEngine() (*perks.Engine, error) {
	reg, err := perks.DefaultRegistry(cfg.Issuers)
	if err != nil {
		return nil, fmt.Errorf("build issuer registry: %w", err)
	}
	return perks.NewEngine(reg, logger), nil
}

// openDrafts opens the configured database and makes sure the drafts table exists.
func openDrafts(ctx context.Context) (repository.DraftRepository, func(), error) {
	db, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		return nil, nil, err
	}
	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		db.Close()
		return nil, nil, err
	}
	drafts := repository.NewDraftRepository(db, logger)
	if err := drafts.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return drafts, db.Close, nil
}
