package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perks-tracker/internal/export"
	"github.com/joseph-ayodele/perks-tracker/internal/server"
)

var (
	exportBatch string
	exportXLSX  string
	exportJSON  string
	purgeAge    time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored batch for review",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		batchID, err := uuid.Parse(exportBatch)
		if err != nil {
			return fmt.Errorf("invalid --batch: %w", err)
		}
		if exportXLSX == "" && exportJSON == "" {
			return fmt.Errorf("one of --xlsx or --json is required")
		}
		drafts, closeDB, err := openDrafts(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		svc := export.NewService(drafts, logger)
		if exportXLSX != "" {
			buf, err := svc.BatchXLSX(ctx, batchID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportXLSX, buf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", exportXLSX, err)
			}
		}
		if exportJSON != "" {
			buf, err := svc.BatchJSON(ctx, batchID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(exportJSON, buf, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", exportJSON, err)
			}
		}
		return nil
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete stored drafts older than the retention window",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		age := purgeAge
		if age <= 0 {
			age = cfg.Batch.Retention
		}
		drafts, closeDB, err := openDrafts(ctx)
		if err != nil {
			return err
		}
		defer closeDB()

		cutoff := time.Now().Add(-age)
		n, err := drafts.PurgeBefore(ctx, cutoff)
		if err != nil {
			return err
		}
		logger.Info("drafts purged", "deleted", n, "cutoff", cutoff.Format(time.RFC3339))
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d drafts older than %s\n", n, age)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the extractor over gRPC",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", cfg.Server.GRPCAddr, err)
		}
		logger.Info("gRPC serving", "addr", lis.Addr().String(), "issuers", len(engine.SupportedIssuers()))
		return server.Serve(cmd.Context(), server.NewGRPCServer(engine, logger), lis, logger)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportBatch, "batch", "", "batch ID printed by scan")
	exportCmd.Flags().StringVar(&exportXLSX, "xlsx", "", "workbook output path")
	exportCmd.Flags().StringVar(&exportJSON, "json", "", "JSON output path")
	_ = exportCmd.MarkFlagRequired("batch")

	purgeCmd.Flags().DurationVar(&purgeAge, "older-than", 0, "age cutoff (default: configured retention)")
}
