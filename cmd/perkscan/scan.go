package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/perks-tracker/constants"
	"github.com/joseph-ayodele/perks-tracker/internal/cache"
	"github.com/joseph-ayodele/perks-tracker/internal/core/batch"
	"github.com/joseph-ayodele/perks-tracker/internal/core/ocr"
	"github.com/joseph-ayodele/perks-tracker/internal/export"
	"github.com/joseph-ayodele/perks-tracker/internal/ingest"
)

var (
	scanIssuer     string
	scanXLSX       string
	scanJSON       string
	scanNoStore    bool
	scanSkipHidden bool
	watchDebounce  time.Duration
	watchInitial   bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <image-or-dir>...",
	Short: "Recognize screenshots and extract perk candidates as one batch",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		paths, stats, err := ingest.Discover(args, scanSkipHidden)
		if err != nil {
			return err
		}
		logger.Info("screenshots discovered", "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)
		if len(paths) == 0 {
			return fmt.Errorf("no screenshots found")
		}

		p, closeAll, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		res, err := p.Run(ctx, batch.Request{Paths: paths, IssuerHint: constants.IssuerKey(scanIssuer)})
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), res)
		return writeExports(rowsFromResult(res))
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>...",
	Short: "Watch directories and extract perks from new screenshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, closeAll, err := newProcessor(ctx)
		if err != nil {
			return err
		}
		defer closeAll()

		events, errs, err := ingest.Watch(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: watchInitial,
			SkipHidden:  scanSkipHidden,
			Debounce:    watchDebounce,
		}, logger)
		if err != nil {
			return err
		}
		logger.Info("watching for screenshots", "roots", args)

		for {
			select {
			case path, ok := <-events:
				if !ok {
					return nil
				}
				res, err := p.Run(ctx, batch.Request{Paths: []string{path}, IssuerHint: constants.IssuerKey(scanIssuer)})
				if err != nil {
					return err
				}
				printResult(cmd.OutOrStdout(), res)
			case err, ok := <-errs:
				if ok && err != nil {
					logger.Warn("watch error", "error", err)
				}
			case <-ctx.Done():
				return nil
			}
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{scanCmd, watchCmd} {
		c.Flags().StringVar(&scanIssuer, "issuer", "", "issuer key or card name for every screenshot")
		c.Flags().BoolVar(&scanNoStore, "no-store", false, "do not persist drafts")
		c.Flags().BoolVar(&scanSkipHidden, "skip-hidden", true, "skip dot files and directories")
	}
	scanCmd.Flags().StringVar(&scanXLSX, "xlsx", "", "write a review workbook to this path")
	scanCmd.Flags().StringVar(&scanJSON, "json", "", "write candidates as JSON to this path")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "wait this long after the last write")
	watchCmd.Flags().BoolVar(&watchInitial, "initial-scan", false, "also process screenshots already present")
}

// newProcessor wires recognition, caching and draft storage from cfg.
func newProcessor(ctx context.Context) (*batch.Processor, func(), error) {
	engine, err := newEngine()
	if err != nil {
		return nil, nil, err
	}
	recognizer := ocr.NewExtractorFromConfig(cfg.OCR, logger)

	rc, closeCache, err := cache.New(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, nil, err
	}
	opts := []batch.Option{
		batch.WithConcurrency(cfg.Batch.Concurrency),
		batch.WithImageTimeout(cfg.Batch.Timeout),
		batch.WithCache(rc),
	}

	closeDB := func() {}
	if !scanNoStore {
		drafts, closeFn, err := openDrafts(ctx)
		if err != nil {
			_ = closeCache()
			return nil, nil, err
		}
		closeDB = closeFn
		opts = append(opts, batch.WithDrafts(drafts))
	}

	closeAll := func() {
		closeDB()
		if err := closeCache(); err != nil {
			logger.Warn("close cache", "error", err)
		}
	}
	return batch.NewProcessor(recognizer, engine, logger, opts...), closeAll, nil
}

func rowsFromResult(res batch.Result) []export.Row {
	var rows []export.Row
	for _, img := range res.Images {
		for _, c := range img.Candidates {
			rows = append(rows, export.Row{Source: img.Path, PerkCandidate: c})
		}
	}
	return rows
}

func printResult(w io.Writer, res batch.Result) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tISSUER\tMERCHANT\tVALUE\tEXPIRES\tCONF\tSOURCE")
	for _, img := range res.Images {
		if img.Err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%s (%v)\n", img.Status, img.Path, img.Err)
			continue
		}
		review := ""
		if img.NeedsReview {
			review = " [review]"
		}
		if len(img.Candidates) == 0 {
			fmt.Fprintf(tw, "%s\t%s\t-\t-\t-\t-\t%s%s\n", img.Status, img.Issuer, img.Path, review)
		}
		for _, c := range img.Candidates {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%.2f\t%s%s\n",
				img.Status, c.Issuer, c.Merchant, c.Value, c.Expiration, c.Confidence, img.Path, review)
		}
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "batch %s: %d images, %d candidates, %d failed in %s\n",
		res.BatchID, len(res.Images), res.Candidates, res.Failed, res.Duration.Round(time.Millisecond))
}

func writeExports(rows []export.Row) error {
	if scanXLSX != "" {
		buf, err := export.CandidatesXLSX(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(scanXLSX, buf, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", scanXLSX, err)
		}
		logger.Info("workbook written", "path", scanXLSX, "rows", len(rows))
	}
	if scanJSON != "" {
		buf, err := export.CandidatesJSON(rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(scanJSON, buf, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", scanJSON, err)
		}
		logger.Info("json written", "path", scanJSON, "rows", len(rows))
	}
	return nil
}
